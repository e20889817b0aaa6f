package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgArtistsLoaded MsgKind = iota
	MsgReleasesLoaded
	MsgTracksLoaded
	MsgTapeLoaded
	MsgTapeChanged
	MsgProgressUpdate
	MsgRefreshComplete
)

type artistsPayload struct {
	artists []models.ValueCount
	err     error
}

type releasesPayload struct {
	artist   string
	releases []models.Release
	err      error
}

type tracksPayload struct {
	release models.Release
	songs   []*models.Song
	err     error
}

type tapePayload struct {
	tape  *models.Tape
	stats []models.SideStats
	err   error
}

type tapeChangedPayload struct {
	status string
	err    error
}

type refreshPayload struct {
	result *tasks.RefreshResult
	err    error
}

// artistsLoadedMsg is the constructor for [MsgArtistsLoaded]
func artistsLoadedMsg(artists []models.ValueCount, err error) Msg {
	return Msg{kind: MsgArtistsLoaded, data: artistsPayload{artists, err}}
}

// releasesLoadedMsg is the constructor for [MsgReleasesLoaded]
func releasesLoadedMsg(artist string, releases []models.Release, err error) Msg {
	return Msg{kind: MsgReleasesLoaded, data: releasesPayload{artist, releases, err}}
}

// tracksLoadedMsg is the constructor for [MsgTracksLoaded]
func tracksLoadedMsg(release models.Release, songs []*models.Song, err error) Msg {
	return Msg{kind: MsgTracksLoaded, data: tracksPayload{release, songs, err}}
}

// tapeLoadedMsg is the constructor for [MsgTapeLoaded]
func tapeLoadedMsg(tape *models.Tape, stats []models.SideStats, err error) Msg {
	return Msg{kind: MsgTapeLoaded, data: tapePayload{tape, stats, err}}
}

// tapeChangedMsg is the constructor for [MsgTapeChanged]
func tapeChangedMsg(status string, err error) Msg {
	return Msg{kind: MsgTapeChanged, data: tapeChangedPayload{status, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// refreshCompleteMsg is the constructor for [MsgRefreshComplete]
func refreshCompleteMsg(result *tasks.RefreshResult, err error) Msg {
	return Msg{kind: MsgRefreshComplete, data: refreshPayload{result, err}}
}
