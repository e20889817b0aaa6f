package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// RefreshResult summarizes a completed mirror refresh.
//
// ReleasesFetched is the number of collection entries processed. ReleasesStored is lower when the collection
// lists a release more than once, since only the first entry for an id is kept.
type RefreshResult struct {
	Run             *models.MirrorRun // Recorded run
	Pages           int               // Collection pages fetched
	ReleasesFetched int               // Entries processed from the collection endpoint
	ReleasesStored  int               // Rows in the new mirror, after duplicate ids are dropped
	YearsBackfilled int               // Entries whose year came from the master record
}

// MirrorEngine refreshes the local release mirror from the remote collection.
type MirrorEngine struct {
	service  services.Service
	releases *repositories.ReleaseRepository
	runs     *repositories.RunRepository
	logger   *log.Logger
}

// NewMirrorEngine creates a new MirrorEngine. A nil logger discards output.
func NewMirrorEngine(svc services.Service, releases *repositories.ReleaseRepository, runs *repositories.RunRepository, logger *log.Logger) *MirrorEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &MirrorEngine{service: svc, releases: releases, runs: runs, logger: logger}
}

// Refresh fetches every collection page, backfills missing years from master records and replaces the mirror.
//
// Remote failures abort before the local replace, so the previous mirror is kept.
// Every attempt is recorded as a [models.MirrorRun].
func (e *MirrorEngine) Refresh(ctx context.Context, progress chan<- ProgressUpdate) (*RefreshResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: remote catalog not configured", shared.ErrUpstreamUnavailable)
	}

	run, err := e.runs.Start()
	if err != nil {
		return nil, err
	}
	logger := shared.WithLogger(e.logger, "run", run.ID)
	logger.Info("starting collection refresh", "service", e.service.Name())

	result, err := e.refresh(ctx, progress, logger)
	result.Run = run
	run.ReleasesFetched = result.ReleasesFetched
	run.YearsBackfilled = result.YearsBackfilled

	if finishErr := e.runs.Finish(run, err); finishErr != nil {
		logger.Error("failed to record mirror run", "error", finishErr)
		if err == nil {
			err = finishErr
		}
	}
	if err != nil {
		logger.Error("collection refresh failed", "error", err)
		return result, err
	}

	logger.Info("collection refresh completed",
		"processed", result.ReleasesFetched, "stored", result.ReleasesStored, "backfilled", result.YearsBackfilled)
	sendProgress(progress, replacedUpdate(result.ReleasesStored, run))
	return result, nil
}

func (e *MirrorEngine) refresh(ctx context.Context, progress chan<- ProgressUpdate, logger *log.Logger) (*RefreshResult, error) {
	result := &RefreshResult{}

	items, pages, err := e.fetchCollection(ctx, progress, logger)
	result.Pages = pages
	result.ReleasesFetched = len(items)
	if err != nil {
		return result, err
	}

	backfilled, err := e.backfillYears(ctx, progress, logger, items)
	result.YearsBackfilled = backfilled
	if err != nil {
		return result, err
	}

	releases := make([]models.Release, 0, len(items))
	for _, item := range items {
		releases = append(releases, FlattenRelease(item))
	}

	sendProgress(progress, replaceUpdate(len(releases)))
	stored, err := e.releases.ReplaceAll(releases)
	if err != nil {
		return result, err
	}
	result.ReleasesStored = stored
	return result, nil
}

// fetchCollection reads page 1, then every remaining page the pagination envelope reports.
func (e *MirrorEngine) fetchCollection(ctx context.Context, progress chan<- ProgressUpdate, logger *log.Logger) ([]services.CollectionItem, int, error) {
	first, err := e.service.CollectionPage(ctx, 1)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch collection page 1: %w", err)
	}

	pages := max(first.Pagination.Pages, 1)
	items := append([]services.CollectionItem(nil), first.Releases...)
	sendProgress(progress, fetchPageUpdate(1, pages, len(first.Releases)))
	logger.Debug("fetched collection page", "page", 1, "pages", pages, "items", first.Pagination.Items)

	for page := 2; page <= pages; page++ {
		next, err := e.service.CollectionPage(ctx, page)
		if err != nil {
			return items, page - 1, fmt.Errorf("failed to fetch collection page %d: %w", page, err)
		}
		items = append(items, next.Releases...)
		sendProgress(progress, fetchPageUpdate(page, pages, len(next.Releases)))
		logger.Debug("fetched collection page", "page", page, "pages", pages)
	}

	return items, pages, nil
}

// backfillYears replaces a zero year with the master record's year. A missing master keeps zero.
func (e *MirrorEngine) backfillYears(ctx context.Context, progress chan<- ProgressUpdate, logger *log.Logger, items []services.CollectionItem) (int, error) {
	var pending []int
	for i := range items {
		info := items[i].BasicInformation
		if info.Year == 0 && info.MasterID != 0 {
			pending = append(pending, i)
		}
	}

	backfilled := 0
	for step, i := range pending {
		info := &items[i].BasicInformation
		sendProgress(progress, backfillUpdate(step+1, len(pending), info.Title))

		master, err := e.service.Master(ctx, info.MasterID)
		if errors.Is(err, shared.ErrNotFound) {
			logger.Warn("master record not found", "release", info.ID, "master", info.MasterID)
			continue
		}
		if err != nil {
			return backfilled, fmt.Errorf("failed to look up year for release %d: %w", info.ID, err)
		}

		if master.Year != 0 {
			info.Year = master.Year
			backfilled++
		}
	}
	return backfilled, nil
}
