package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"golang.org/x/time/rate"
)

// CoverOpts contains configuration for bulk cover downloads.
type CoverOpts struct {
	OutputDir  string  // Base output directory (default: covers_{epoch})
	NumWorkers int     // Concurrent workers (default: 4, max 10)
	RateLimit  float64 // Downloads per second (default: 2)
}

// CoverBatchResult summarizes a bulk cover download.
type CoverBatchResult struct {
	Manifest     *formatter.CoverManifest
	ManifestPath string
}

type coverJob struct {
	release models.Release
	url     string
	path    string
}

// DownloadCovers downloads the cover image of every release matched by the browse (category, selection) into a
// directory, one file per release, and writes a covers_manifest.json summary.
//
// Downloads run on a worker pool behind a rate limiter. Individual failures are recorded in the manifest and do not
// abort the batch.
func (c *Catalog) DownloadCovers(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	category, selection string,
	opts CoverOpts,
) (*CoverBatchResult, error) {
	releases, err := c.releases.Browse(category, selection)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("covers_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := &formatter.CoverManifest{
		Directory: opts.OutputDir,
		Total:     len(releases),
		Covers:    make([]formatter.CoverResult, 0, len(releases)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan coverJob, len(releases))
	results := make(chan formatter.CoverResult, len(releases))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go c.coverWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, r := range releases {
		url := r.CoverURL
		if url == "" {
			url = r.ThumbURL
		}
		jobs <- coverJob{release: r, url: url, path: filepath.Join(opts.OutputDir, coverFilename(r, url))}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		manifest.Covers = append(manifest.Covers, res)
		if res.Error == "" {
			manifest.Downloaded++
			sendProgress(progress, coverCompletedUpdate(completed, len(releases), res.Title, res.File))
		} else {
			manifest.Failed++
			sendProgress(progress, coverFailedUpdate(completed, len(releases), res.Title, errors.New(res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "covers_manifest.json")
	if err := formatter.WriteCoverManifest(manifest, manifestPath); err != nil {
		return &CoverBatchResult{Manifest: manifest}, fmt.Errorf("download completed but failed to write manifest: %w", err)
	}

	c.logger.Info("downloaded covers", "dir", opts.OutputDir, "downloaded", manifest.Downloaded, "failed", manifest.Failed)
	return &CoverBatchResult{Manifest: manifest, ManifestPath: manifestPath}, ctx.Err()
}

// coverWorker downloads covers from the jobs channel. Jobs left after cancellation are reported as failed.
func (c *Catalog) coverWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan coverJob,
	results chan<- formatter.CoverResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := formatter.CoverResult{ReleaseID: job.release.ReleaseID, Title: job.release.Title}

		switch {
		case job.url == "":
			res.Error = "release has no cover image"
		default:
			if err := limiter.Wait(ctx); err != nil {
				res.Error = err.Error()
				break
			}
			if err := formatter.WriteImage(ctx, c.client, job.url, job.path); err != nil {
				res.Error = err.Error()
				break
			}
			res.File = filepath.Base(job.path)
		}
		results <- res
	}
}

// coverFilename is "<release id>" plus the image URL's extension, ".jpg" when it has none.
func coverFilename(r models.Release, url string) string {
	ext := strings.ToLower(filepath.Ext(strings.SplitN(url, "?", 2)[0]))
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return fmt.Sprintf("%d%s", r.ReleaseID, ext)
}
