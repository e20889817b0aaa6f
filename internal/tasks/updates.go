package tasks

import (
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCollection Phase = iota
	BackfillYears
	ReplaceReleases
	ImportTracks
	DownloadCovers
)

func (p Phase) String() string {
	switch p {
	case FetchCollection:
		return "fetch_collection"
	case BackfillYears:
		return "backfill_years"
	case ReplaceReleases:
		return "replace_releases"
	case ImportTracks:
		return "import_tracks"
	case DownloadCovers:
		return "download_covers"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchPageUpdate(page, pages, items int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    page,
		Total:   pages,
		Message: fmt.Sprintf("[%d/%d] Fetched collection page (%d releases)", page, pages, items),
	}
}

func backfillUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BackfillYears,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking up year for %s", step, total, title),
	}
}

func replaceUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplaceReleases,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Replacing local mirror with %d releases...", total),
	}
}

func replacedUpdate(stored int, run *models.MirrorRun) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplaceReleases,
		Step:    stored,
		Total:   stored,
		Message: fmt.Sprintf("Mirrored %d releases", stored),
		Data:    run,
	}
}

func importTracksUpdate(step, total int, song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, song.ReleaseTrack, song.Title),
		Data:    song,
	}
}

func coverCompletedUpdate(step, total int, title, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadCovers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, title, file),
	}
}

func coverFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadCovers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
