// package formatter provides functions to export tape data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

const defaultLength = "00:00:00"

var sides = []models.Side{models.SideA, models.SideB}

// TapeStats returns the track count and total playtime of each side, A first.
//
// Lengths with two colons are H:M:S, with one colon M:S, anything else counts as zero.
func TapeStats(tape *models.Tape) []models.SideStats {
	stats := make([]models.SideStats, 0, len(sides))
	for _, side := range sides {
		var total time.Duration
		entries := tape.Side(side)
		for _, e := range entries {
			total += shared.ParseLength(e.Length)
		}
		stats = append(stats, models.SideStats{
			Side:     side,
			Tracks:   len(entries),
			Duration: total,
			Total:    shared.FormatLength(total),
		})
	}
	return stats
}

// ExportToText renders each side as a "SIDE X" line followed by tab-separated track lines:
//
//	<tab><n><tab><time><tab><title> - <artist> [<release>]
//
// A missing time is written as 00:00:00.
func ExportToText(tape *models.Tape) []byte {
	var buf bytes.Buffer

	for _, side := range sides {
		buf.WriteString(fmt.Sprintf("SIDE %s\n", side))
		for i, e := range tape.Side(side) {
			length := e.Length
			if length == "" {
				length = defaultLength
			}
			buf.WriteString(fmt.Sprintf("\t%d\t%s\t%s - %s [%s]\n", i+1, length, e.Title, e.Artist, e.Release))
		}
	}

	return buf.Bytes()
}

// ExportToCSV converts a tape to CSV with columns SIDE, TRACK NO, TIME, TITLE, ARTIST, RELEASE.
//
// Title, artist and release are always quoted with embedded quotes doubled. Time is written as stored.
func ExportToCSV(tape *models.Tape) []byte {
	var buf bytes.Buffer

	buf.WriteString("SIDE,TRACK NO,TIME,TITLE,ARTIST,RELEASE\n")
	for _, side := range sides {
		for i, e := range tape.Side(side) {
			record := []string{
				string(side),
				fmt.Sprint(i + 1),
				e.Length,
				quoteField(e.Title),
				quoteField(e.Artist),
				quoteField(e.Release),
			}
			buf.WriteString(strings.Join(record, ",") + "\n")
		}
	}

	return buf.Bytes()
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportToMarkdown renders a heading per side with numbered tracks and the side total.
func ExportToMarkdown(tape *models.Tape, title string) []byte {
	var buf bytes.Buffer

	if title == "" {
		title = "Mixtape"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	for i, stat := range TapeStats(tape) {
		buf.WriteString(fmt.Sprintf("## Side %s\n\n", stat.Side))
		buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", stat.Tracks))
		buf.WriteString(fmt.Sprintf("**Total**: %s\n\n", stat.Total))

		for n, e := range tape.Side(sides[i]) {
			length := e.Length
			if length == "" {
				length = defaultLength
			}
			releasePart := ""
			if e.Release != "" {
				releasePart = fmt.Sprintf(" (%s)", e.Release)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", n+1, e.Artist, e.Title, releasePart, length))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// Export format names accepted by [Export] and [FormatForPath].
const (
	FormatText     = "txt"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
)

// FormatForPath picks the export format from a file extension. Unrecognized extensions use text.
func FormatForPath(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV
	case "md", "markdown":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Export renders tape in format. Unknown formats use text.
func Export(tape *models.Tape, format string) []byte {
	switch format {
	case FormatCSV:
		return ExportToCSV(tape)
	case FormatMarkdown:
		return ExportToMarkdown(tape, "")
	default:
		return ExportToText(tape)
	}
}

// WriteExport writes tape to path in the format chosen by its extension and returns that format.
func WriteExport(tape *models.Tape, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: export path", shared.ErrMissingArgument)
	}

	format := FormatForPath(path)
	if err := os.WriteFile(path, Export(tape, format), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return format, nil
}

// DownloadImage downloads an image from the given URL with client and returns the raw bytes.
//
// A nil client uses one with a 30 second timeout.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidInput)
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download image: %w", shared.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download image: status %d", shared.ErrUpstreamUnavailable, resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteImage downloads url into path, creating parent directories.
func WriteImage(ctx context.Context, client *http.Client, url, path string) error {
	data, err := DownloadImage(ctx, client, url)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// CoverManifest lists the result of a bulk cover download.
type CoverManifest struct {
	Directory  string        `json:"directory"`
	Total      int           `json:"total"`
	Downloaded int           `json:"downloaded"`
	Failed     int           `json:"failed"`
	Covers     []CoverResult `json:"covers"`
}

// CoverResult is one release's cover download outcome.
type CoverResult struct {
	ReleaseID int64  `json:"release_id"`
	Title     string `json:"title"`
	File      string `json:"file,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WriteCoverManifest writes manifest as indented JSON to path.
func WriteCoverManifest(manifest *CoverManifest, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
