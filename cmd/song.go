package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/urfave/cli/v3"
)

// optionalID parses an id flag, treating an empty value as unset.
func optionalID(cmd *cli.Command, name string) (int64, error) {
	value := cmd.String(name)
	if value == "" {
		return 0, nil
	}
	return parseID(name, value)
}

// SongAdd stores a song from flags.
func (r *Runner) SongAdd(ctx context.Context, cmd *cli.Command) error {
	releaseID, err := optionalID(cmd, "release-id")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	song := &models.Song{
		Title:        cmd.String("title"),
		Release:      cmd.String("release"),
		Artist:       cmd.String("artist"),
		Length:       cmd.String("length"),
		ReleaseID:    releaseID,
		ReleaseTrack: cmd.String("track"),
	}
	if err := r.songs.Insert(song); err != nil {
		return err
	}

	r.logger.Debug("song stored", "id", song.SongID, "title", song.Title)
	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	r.writePlain("✓ Stored song %d: %s\n", song.SongID, song.Title)
	return nil
}

// SongRemove deletes a song. Tape entries keep their copy.
func (r *Runner) SongRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("song id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.songs.Delete(id); err != nil {
		return err
	}
	r.writePlain("✓ Deleted song %d\n", id)
	return nil
}

// SongList lists every stored song.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	songs, err := r.songs.List()
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, songs)
}

// SongQuery lists the songs matching every given filter.
func (r *Runner) SongQuery(ctx context.Context, cmd *cli.Command) error {
	songID, err := optionalID(cmd, "id")
	if err != nil {
		return err
	}
	releaseID, err := optionalID(cmd, "release-id")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	songs, err := r.songs.Query(models.SongQuery{
		SongID:       songID,
		Title:        cmd.String("title"),
		Release:      cmd.String("release"),
		Artist:       cmd.String("artist"),
		MinLength:    cmd.String("min-length"),
		MaxLength:    cmd.String("max-length"),
		ReleaseID:    releaseID,
		ReleaseTrack: cmd.String("track"),
	})
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, songs)
}

func (r *Runner) writeSongs(cmd *cli.Command, songs []*models.Song) error {
	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		releaseID := ""
		if s.ReleaseID != 0 {
			releaseID = fmt.Sprint(s.ReleaseID)
		}
		rows = append(rows, []string{fmt.Sprint(s.SongID), s.Title, s.Artist, s.Release, s.Length, releaseID, s.ReleaseTrack})
	}
	r.writeTable([]string{"ID", "Title", "Artist", "Release", "Length", "Release ID", "Track"}, rows)
	r.writePlain("%d songs\n", len(songs))
	return nil
}
