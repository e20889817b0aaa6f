package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Catalog ties the mirrored releases to their track listings and the tape.
type Catalog struct {
	service  services.Service
	releases *repositories.ReleaseRepository
	songs    *repositories.SongRepository
	tape     *repositories.TapeRepository
	client   *http.Client
	logger   *log.Logger
}

// NewCatalog creates a new Catalog.
//
// client is used for cover downloads and defaults to [http.DefaultClient]. svc may be nil when only local data is
// needed; remote operations then fail with [shared.ErrUpstreamUnavailable].
func NewCatalog(
	svc services.Service,
	releases *repositories.ReleaseRepository,
	songs *repositories.SongRepository,
	tape *repositories.TapeRepository,
	client *http.Client,
	logger *log.Logger,
) *Catalog {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Catalog{service: svc, releases: releases, songs: songs, tape: tape, client: client, logger: logger}
}

func (c *Catalog) requireService() error {
	if c.service == nil {
		return fmt.Errorf("%w: remote catalog not configured", shared.ErrUpstreamUnavailable)
	}
	return nil
}

// Release returns a mirrored release.
func (c *Catalog) Release(id int64) (*models.Release, error) {
	return c.releases.Get(id)
}

// Tracks returns the songs linked to a release, importing the remote track listing the first time.
//
// Only entries of type "track" become songs. Track artists fall back to the release artists and durations that
// cannot be normalized are stored empty.
func (c *Catalog) Tracks(ctx context.Context, progress chan<- ProgressUpdate, releaseID int64) ([]*models.Song, error) {
	songs, err := c.songs.ForRelease(releaseID)
	if err != nil {
		return nil, err
	}
	if len(songs) > 0 {
		return songs, nil
	}

	if err := c.requireService(); err != nil {
		return nil, err
	}
	detail, err := c.service.Release(ctx, releaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release %d: %w", releaseID, err)
	}

	tracks := make([]services.Track, 0, len(detail.Tracklist))
	for _, t := range detail.Tracklist {
		if (t.Type == "track" || t.Type == "") && strings.TrimSpace(t.Title) != "" {
			tracks = append(tracks, t)
		}
	}

	releaseArtist := artistNames(detail.Artists)
	imported := make([]*models.Song, 0, len(tracks))
	for _, t := range tracks {
		song := &models.Song{
			Title:        t.Title,
			Release:      detail.Title,
			Artist:       releaseArtist,
			ReleaseID:    releaseID,
			ReleaseTrack: t.Position,
		}
		if len(t.Artists) > 0 {
			song.Artist = artistNames(t.Artists)
		}
		if length, err := shared.NormalizeLength(t.Duration); err == nil {
			song.Length = length
		} else {
			c.logger.Warn("dropping unparseable duration", "release", releaseID, "position", t.Position, "duration", t.Duration)
		}
		imported = append(imported, song)
	}

	if err := c.songs.InsertAll(imported); err != nil {
		return nil, fmt.Errorf("failed to import tracks for release %d: %w", releaseID, err)
	}
	for i, song := range imported {
		sendProgress(progress, importTracksUpdate(i+1, len(imported), song))
	}
	songs = append(songs, imported...)

	c.logger.Info("imported track listing", "release", releaseID, "tracks", len(songs))
	return songs, nil
}

// Videos returns the videos linked from a release page.
func (c *Catalog) Videos(ctx context.Context, releaseID int64) ([]services.Video, error) {
	if err := c.requireService(); err != nil {
		return nil, err
	}
	detail, err := c.service.Release(ctx, releaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release %d: %w", releaseID, err)
	}
	return detail.Videos, nil
}

// AddToTape appends a copy of a stored song to side.
func (c *Catalog) AddToTape(side models.Side, songID int64) (*models.TapeEntry, error) {
	song, err := c.songs.Get(songID)
	if err != nil {
		return nil, err
	}
	return c.tape.Add(side, song)
}

// RemoveFromTape deletes a tape entry.
func (c *Catalog) RemoveFromTape(entryID int64) error {
	return c.tape.Remove(entryID)
}

// MoveOnTape places an entry at position (1-based) on side.
func (c *Catalog) MoveOnTape(entryID int64, side models.Side, position int) error {
	return c.tape.Move(entryID, side, position)
}

// ClearTape empties both sides.
func (c *Catalog) ClearTape() error {
	return c.tape.Clear()
}

// Tape returns both sides in order.
func (c *Catalog) Tape() (*models.Tape, error) {
	return c.tape.Sides()
}

// Stats returns per-side track counts and playtime.
func (c *Catalog) Stats() ([]models.SideStats, error) {
	tape, err := c.tape.Sides()
	if err != nil {
		return nil, err
	}
	return formatter.TapeStats(tape), nil
}

// ExportTape writes the tape to path in the format chosen by its extension and returns that format.
func (c *Catalog) ExportTape(path string) (string, error) {
	tape, err := c.tape.Sides()
	if err != nil {
		return "", err
	}
	format, err := formatter.WriteExport(tape, path)
	if err != nil {
		return "", err
	}
	c.logger.Info("exported tape", "path", path, "format", format, "tracks", tape.Len())
	return format, nil
}

// Cover downloads a release's cover image to path.
func (c *Catalog) Cover(ctx context.Context, releaseID int64, path string) error {
	release, err := c.releases.Get(releaseID)
	if err != nil {
		return err
	}
	url := release.CoverURL
	if url == "" {
		url = release.ThumbURL
	}
	if url == "" {
		return fmt.Errorf("%w: release %d has no cover image", shared.ErrNotFound, releaseID)
	}
	return formatter.WriteImage(ctx, c.client, url, path)
}

func artistNames(artists []services.Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
