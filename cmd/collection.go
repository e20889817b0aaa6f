package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CollectionRefresh rebuilds the local mirror from the Discogs collection.
func (r *Runner) CollectionRefresh(ctx context.Context, cmd *cli.Command) error {
	if r.service == nil {
		return fmt.Errorf("%w: set Discogs credentials with 'mixtape setup config'", shared.ErrMissingCredentials)
	}
	if err := r.open(); err != nil {
		return err
	}

	r.logger.Info("refreshing collection", "service", r.service.Name())

	progress, stop := r.watchProgress()
	result, err := r.engine.Refresh(ctx, progress)
	stop()
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Collection Refreshed")
	r.writePlain("Run:              %s\n", result.Run.ID)
	r.writePlain("Pages:            %d\n", result.Pages)
	r.writePlain("Releases fetched: %d\n", result.ReleasesFetched)
	r.writePlain("Releases stored:  %d\n", result.ReleasesStored)
	r.writePlain("Years backfilled: %d\n", result.YearsBackfilled)
	return nil
}

// CollectionBrowse lists the releases matching a category and selection.
func (r *Runner) CollectionBrowse(ctx context.Context, cmd *cli.Command) error {
	category := cmd.StringArg("category")
	if category == "" {
		return fmt.Errorf("%w: category", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	releases, err := r.releases.Browse(category, cmd.StringArg("selection"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(releases, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(releases))
	for _, rel := range releases {
		rows = append(rows, []string{
			fmt.Sprint(rel.ReleaseID),
			joinTokens(rel.Artist),
			rel.Title,
			yearText(rel.Year),
			joinTokens(rel.Label),
			joinTokens(rel.Format),
		})
	}
	r.writeTable([]string{"ID", "Artist", "Title", "Year", "Label", "Format"}, rows)
	r.writePlain("%d releases\n", len(releases))
	return nil
}

// CollectionCategories lists the browsable categories with their distinct value counts.
func (r *Runner) CollectionCategories(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	categories, err := r.releases.Categories()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(categories, cmd.Bool("pretty"))
	}
	r.writeTable([]string{"Category", "Values"}, valueRows(categories))
	return nil
}

// CollectionValues lists the distinct values of a category with their counts.
func (r *Runner) CollectionValues(ctx context.Context, cmd *cli.Command) error {
	category := cmd.StringArg("category")
	if category == "" {
		return fmt.Errorf("%w: category", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	values, err := r.releases.UniqueValues(category)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(values, cmd.Bool("pretty"))
	}
	r.writeTable([]string{category, "Releases"}, valueRows(values))
	return nil
}

// CollectionRuns shows the most recent refresh runs.
func (r *Runner) CollectionRuns(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	runs, err := r.runs.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		completed := ""
		if run.CompletedAt != nil {
			completed = run.CompletedAt.Local().Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			completed,
			run.Status,
			fmt.Sprint(run.ReleasesFetched),
			fmt.Sprint(run.YearsBackfilled),
			run.ErrorMessage,
		})
	}
	r.writeTable([]string{"Run", "Started", "Completed", "Status", "Fetched", "Backfilled", "Error"}, rows)
	return nil
}

// CollectionCovers downloads the cover image of every release matching a category and selection.
func (r *Runner) CollectionCovers(ctx context.Context, cmd *cli.Command) error {
	category := cmd.StringArg("category")
	if category == "" {
		return fmt.Errorf("%w: category", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	opts := tasks.CoverOpts{
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	progress, stop := r.watchProgress()
	result, err := r.catalog.DownloadCovers(ctx, progress, category, cmd.StringArg("selection"), opts)
	stop()
	if err != nil {
		return fmt.Errorf("cover download failed: %w", err)
	}

	m := result.Manifest
	r.writePlain("✓ Downloaded %d of %d covers to %s\n", m.Downloaded, m.Total, m.Directory)
	if m.Failed > 0 {
		r.writePlain("  Failed: %d\n", m.Failed)
	}
	r.writePlain("  Manifest: %s\n", result.ManifestPath)
	return nil
}

func valueRows(values []models.ValueCount) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v.Name, fmt.Sprint(v.Count)})
	}
	return rows
}

// joinTokens renders a pipe-joined column for display.
func joinTokens(value string) string {
	return strings.Join(models.MultiValue(value).Split(), ", ")
}

func yearText(year int) string {
	if year == 0 {
		return "unknown"
	}
	return fmt.Sprint(year)
}
