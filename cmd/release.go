package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) releaseID(cmd *cli.Command) (int64, error) {
	return parseID("release id", cmd.StringArg("id"))
}

// ReleaseShow prints one mirrored release.
func (r *Runner) ReleaseShow(ctx context.Context, cmd *cli.Command) error {
	id, err := r.releaseID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	rel, err := r.catalog.Release(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(rel, cmd.Bool("pretty"))
	}

	r.writePlainHeader(rel.Title)
	r.writePlain("Artist:   %s\n", joinTokens(rel.Artist))
	r.writePlain("Year:     %s\n", yearText(rel.Year))
	r.writePlain("Label:    %s\n", joinTokens(rel.Label))
	r.writePlain("Catalog:  %s\n", joinTokens(rel.CatalogID))
	r.writePlain("Format:   %s\n", joinTokens(rel.Format))
	r.writePlain("Genre:    %s\n", joinTokens(rel.Genre))
	r.writePlain("Style:    %s\n", joinTokens(rel.Style))
	r.writePlain("Added:    %s\n", rel.DateAdded)
	r.writePlain("URL:      %s\n", shared.ReleaseWebURL(rel.ReleaseID))
	return nil
}

// ReleaseTracks lists a release's tracks, importing them from Discogs the first time.
func (r *Runner) ReleaseTracks(ctx context.Context, cmd *cli.Command) error {
	id, err := r.releaseID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	progress, stop := r.watchProgress()
	songs, err := r.catalog.Tracks(ctx, progress, id)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{fmt.Sprint(s.SongID), s.ReleaseTrack, s.Title, s.Artist, s.Length})
	}
	r.writeTable([]string{"Song", "Track", "Title", "Artist", "Length"}, rows)
	return nil
}

// ReleaseVideos lists a release's videos.
func (r *Runner) ReleaseVideos(ctx context.Context, cmd *cli.Command) error {
	id, err := r.releaseID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	videos, err := r.catalog.Videos(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(videos, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{v.Title, shared.FormatLength(time.Duration(v.Duration) * time.Second), v.URI})
	}
	r.writeTable([]string{"Title", "Length", "URL"}, rows)
	return nil
}

// ReleaseCover downloads a release's cover image.
func (r *Runner) ReleaseCover(ctx context.Context, cmd *cli.Command) error {
	id, err := r.releaseID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	path := cmd.String("output")
	if path == "" {
		path = fmt.Sprintf("cover_%d.jpg", id)
	}

	if err := r.catalog.Cover(ctx, id, path); err != nil {
		return err
	}
	r.logger.Info("cover saved", "release", id, "path", path)
	r.writePlain("✓ Cover saved to %s\n", path)
	return nil
}

// ReleaseOpen opens the release page in the default browser.
func (r *Runner) ReleaseOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := r.releaseID(cmd)
	if err != nil {
		return err
	}

	url := shared.ReleaseWebURL(id)
	if cmd.Bool("print") {
		return r.writePlain("%s\n", url)
	}

	r.logger.Info("opening release", "url", url)
	if err := shared.OpenBrowser(url); err != nil {
		r.writePlain("Open %s in your browser\n", url)
		return err
	}
	return nil
}
