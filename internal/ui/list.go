package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mixtape/internal/models"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = releaseItem{}
	_ list.Item = songItem{}
	_ list.Item = entryItem{}
)

// artistItem wraps an ARTIST [models.ValueCount] to implement [list.Item].
type artistItem struct {
	artist models.ValueCount
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	if i.artist.Count == 1 {
		return "1 release"
	}
	return fmt.Sprintf("%d releases", i.artist.Count)
}

// releaseItem wraps [models.Release] to implement [list.Item].
type releaseItem struct {
	release models.Release
}

func (i releaseItem) FilterValue() string { return i.release.Title }
func (i releaseItem) Title() string       { return i.release.Title }
func (i releaseItem) Description() string {
	parts := []string{}
	if i.release.Year != 0 {
		parts = append(parts, fmt.Sprint(i.release.Year))
	}
	if i.release.Label != "" {
		parts = append(parts, strings.Join(models.MultiValue(i.release.Label).Split(), ", "))
	}
	if i.release.Format != "" {
		parts = append(parts, strings.Join(models.MultiValue(i.release.Format).Split(), ", "))
	}
	return strings.Join(parts, " • ")
}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song *models.Song
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string {
	if i.song.ReleaseTrack == "" {
		return i.song.Title
	}
	return fmt.Sprintf("%s. %s", i.song.ReleaseTrack, i.song.Title)
}
func (i songItem) Description() string {
	desc := i.song.Artist
	if i.song.Length != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Length)
	}
	return desc
}

// entryItem wraps [models.TapeEntry] to implement [list.Item].
type entryItem struct {
	entry models.TapeEntry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string {
	return fmt.Sprintf("%s%d  %s", i.entry.Side, i.entry.Position, i.entry.Title)
}
func (i entryItem) Description() string {
	length := i.entry.Length
	if length == "" {
		length = "--:--:--"
	}
	return fmt.Sprintf("%s • %s • %s", length, i.entry.Artist, i.entry.Release)
}
