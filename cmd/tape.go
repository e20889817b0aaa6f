package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/server"
	"github.com/urfave/cli/v3"
)

func parseSide(value string) (models.Side, error) {
	if value == "" {
		return "", fmt.Errorf("%w: side", shared.ErrMissingArgument)
	}
	side, err := models.ParseSide(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return side, nil
}

// TapeAdd appends a stored song to a side.
func (r *Runner) TapeAdd(ctx context.Context, cmd *cli.Command) error {
	side, err := parseSide(cmd.StringArg("side"))
	if err != nil {
		return err
	}
	songID, err := parseID("song id", cmd.StringArg("song-id"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	entry, err := r.catalog.AddToTape(side, songID)
	if err != nil {
		return err
	}
	r.writePlain("✓ Added '%s' to side %s at position %d (entry %d)\n", entry.Title, entry.Side, entry.Position, entry.ID)
	return nil
}

// TapeRemove removes an entry and closes the gap on its side.
func (r *Runner) TapeRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("entry id", cmd.StringArg("entry-id"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.catalog.RemoveFromTape(id); err != nil {
		return err
	}
	r.writePlain("✓ Removed entry %d\n", id)
	return nil
}

// TapeMove moves an entry to a side and 1-based position.
func (r *Runner) TapeMove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("entry id", cmd.StringArg("entry-id"))
	if err != nil {
		return err
	}
	side, err := parseSide(cmd.StringArg("side"))
	if err != nil {
		return err
	}
	position, err := strconv.Atoi(cmd.StringArg("position"))
	if err != nil || position < 1 {
		return fmt.Errorf("%w: position must be a positive integer, got %q", shared.ErrInvalidArgument, cmd.StringArg("position"))
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.catalog.MoveOnTape(id, side, position); err != nil {
		return err
	}
	r.writePlain("✓ Moved entry %d to side %s\n", id, side)
	return nil
}

// TapeClear removes every entry.
func (r *Runner) TapeClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	if err := r.catalog.ClearTape(); err != nil {
		return err
	}
	r.writePlain("✓ Tape cleared\n")
	return nil
}

// TapeShow prints both sides with their totals.
func (r *Runner) TapeShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	tape, err := r.catalog.Tape()
	if err != nil {
		return err
	}
	stats, err := r.catalog.Stats()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(server.TapeResponse{Sides: tape, Stats: stats}, cmd.Bool("pretty"))
	}

	for _, stat := range stats {
		r.writePlainln("SIDE %s  (%d tracks, %s)", stat.Side, stat.Tracks, stat.Total)
		rows := [][]string{}
		for _, e := range tape.Side(stat.Side) {
			length := e.Length
			if length == "" {
				length = "--:--:--"
			}
			rows = append(rows, []string{fmt.Sprint(e.Position), fmt.Sprint(e.ID), length, e.Title, e.Artist, e.Release})
		}
		r.writeTable([]string{"#", "Entry", "Time", "Title", "Artist", "Release"}, rows)
	}
	return nil
}

// TapeExport writes the tape to a file in the format chosen by its extension.
func (r *Runner) TapeExport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: export file", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	format, err := r.catalog.ExportTape(path)
	if err != nil {
		return err
	}
	r.logger.Info("tape exported", "path", path, "format", format)
	r.writePlain("✓ Tape exported to %s (%s)\n", path, format)
	return nil
}
