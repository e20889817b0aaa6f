package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ArtistView ViewState = iota
	ReleaseView
	TrackView
	TapeView
	RefreshView
)

// Library reads the mirrored collection.
type Library interface {
	UniqueValues(category string) ([]models.ValueCount, error)
	Browse(category, selection string) ([]models.Release, error)
}

// Tapes imports tracks and edits the tape. Satisfied by [tasks.Catalog].
type Tapes interface {
	Tracks(ctx context.Context, progress chan<- tasks.ProgressUpdate, releaseID int64) ([]*models.Song, error)
	AddToTape(side models.Side, songID int64) (*models.TapeEntry, error)
	RemoveFromTape(entryID int64) error
	Tape() (*models.Tape, error)
	Stats() ([]models.SideStats, error)
}

// Refresher rebuilds the mirror. Satisfied by [tasks.MirrorEngine].
type Refresher interface {
	Refresh(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.RefreshResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	tapeFrom  ViewState
	library   Library
	tapes     Tapes
	refresher Refresher
	width     int
	height    int

	artistList  list.Model
	releaseList list.Model
	trackList   list.Model
	tapeList    list.Model

	artist  string
	release models.Release
	stats   []models.SideStats

	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	refreshing   bool
	result       *tasks.RefreshResult

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, library Library, tapes Tapes, refresher Refresher) *Model {
	m := &Model{
		ctx:       ctx,
		view:      ArtistView,
		library:   library,
		tapes:     tapes,
		refresher: refresher,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.artistList = m.newList(nil, "Artists")
	m.releaseList = m.newList(nil, "Releases")
	m.trackList = m.newList(nil, "Tracks")
	m.tapeList = m.newList(nil, "Tape")
	return m
}

// Init loads the artists of the mirrored collection.
func (m *Model) Init() tea.Cmd {
	return m.loadArtists()
}

// View reports the current view.
func (m *Model) View() string {
	switch m.view {
	case ArtistView:
		return m.renderList(m.artistList, m.keys.enter, m.keys.tape, m.keys.refresh, m.keys.quit)
	case ReleaseView:
		return m.renderList(m.releaseList, m.keys.enter, m.keys.tape, m.keys.back, m.keys.quit)
	case TrackView:
		sideA := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add to side A"))
		return m.renderList(m.trackList, sideA, m.keys.sideB, m.keys.tape, m.keys.back, m.keys.quit)
	case TapeView:
		return m.renderTape()
	case RefreshView:
		return m.renderRefresh()
	default:
		return ""
	}
}

// CurrentView reports the active view.
func (m *Model) CurrentView() ViewState {
	return m.view
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.listSize()
		for _, l := range []*list.Model{&m.artistList, &m.releaseList, &m.trackList, &m.tapeList} {
			l.SetSize(w, h)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgArtistsLoaded:
		p := msg.data.(artistsPayload)
		m.err = p.err
		items := make([]list.Item, len(p.artists))
		for i, a := range p.artists {
			items[i] = artistItem{artist: a}
		}
		cmd := m.artistList.SetItems(items)
		return m, cmd

	case MsgReleasesLoaded:
		p := msg.data.(releasesPayload)
		if p.err != nil {
			m.err = p.err
			return m, nil
		}
		m.err = nil
		m.artist = p.artist
		items := make([]list.Item, len(p.releases))
		for i, r := range p.releases {
			items[i] = releaseItem{release: r}
		}
		m.releaseList = m.newList(items, p.artist)
		m.view = ReleaseView
		return m, nil

	case MsgTracksLoaded:
		p := msg.data.(tracksPayload)
		if p.err != nil {
			m.err = p.err
			return m, nil
		}
		m.err = nil
		m.release = p.release
		items := make([]list.Item, len(p.songs))
		for i, s := range p.songs {
			items[i] = songItem{song: s}
		}
		m.trackList = m.newList(items, p.release.Title)
		m.view = TrackView
		return m, nil

	case MsgTapeLoaded:
		p := msg.data.(tapePayload)
		if p.err != nil {
			m.err = p.err
			return m, nil
		}
		m.stats = p.stats
		items := make([]list.Item, 0, p.tape.Len())
		for _, e := range append(append([]models.TapeEntry{}, p.tape.A...), p.tape.B...) {
			items = append(items, entryItem{entry: e})
		}
		index := m.tapeList.Index()
		m.tapeList = m.newList(items, "Tape")
		if index >= len(items) {
			index = len(items) - 1
		}
		if index > 0 {
			m.tapeList.Select(index)
		}
		return m, nil

	case MsgTapeChanged:
		p := msg.data.(tapeChangedPayload)
		m.err = p.err
		if p.err != nil {
			m.status = ""
			return m, nil
		}
		m.status = p.status
		if m.view == TapeView {
			return m, m.loadTape()
		}
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgRefreshComplete:
		p := msg.data.(refreshPayload)
		m.refreshing = false
		m.progressChan, m.done = nil, nil
		m.result = p.result
		m.err = p.err
		if p.err != nil {
			return m, nil
		}
		return m, m.loadArtists()
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if l := m.activeList(); l != nil {
		switch l.FilterState() {
		case list.Filtering:
			return m.updateList(msg)
		case list.FilterApplied:
			if key.Matches(msg, m.keys.back) {
				return m.updateList(msg)
			}
		}
	}

	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch m.view {
	case ArtistView:
		return m.handleArtistKeys(msg)
	case ReleaseView:
		return m.handleReleaseKeys(msg)
	case TrackView:
		return m.handleTrackKeys(msg)
	case TapeView:
		return m.handleTapeKeys(msg)
	case RefreshView:
		return m.handleRefreshKeys(msg)
	}
	return m, nil
}

func (m *Model) handleArtistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.artistList.SelectedItem().(artistItem); ok {
			return m, m.loadReleases(item.artist.Name)
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.startRefresh()
	case key.Matches(msg, m.keys.tape):
		return m, m.openTape()
	}
	return m.updateList(msg)
}

func (m *Model) handleReleaseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.releaseList.SelectedItem().(releaseItem); ok {
			return m, m.loadTracks(item.release)
		}
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.view = ArtistView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.tape):
		return m, m.openTape()
	}
	return m.updateList(msg)
}

func (m *Model) handleTrackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		return m, m.addSelected(models.SideA)
	case key.Matches(msg, m.keys.sideB):
		return m, m.addSelected(models.SideB)
	case key.Matches(msg, m.keys.back):
		m.view = ReleaseView
		m.status, m.err = "", nil
		return m, nil
	case key.Matches(msg, m.keys.tape):
		return m, m.openTape()
	}
	return m.updateList(msg)
}

func (m *Model) handleTapeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.tapeList.SelectedItem().(entryItem); ok {
			return m, m.removeEntry(item.entry)
		}
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.view = m.tapeFrom
		m.status, m.err = "", nil
		return m, nil
	}
	return m.updateList(msg)
}

func (m *Model) handleRefreshKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.refreshing {
		return m, nil
	}
	if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.enter) {
		m.view = ArtistView
		m.result = nil
	}
	return m, nil
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case ArtistView:
		return &m.artistList
	case ReleaseView:
		return &m.releaseList
	case TrackView:
		return &m.trackList
	case TapeView:
		return &m.tapeList
	default:
		return nil
	}
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := m.activeList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

// listSize leaves room for the status and help lines. Never negative.
func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) newList(items []list.Item, title string) list.Model {
	w, h := m.listSize()
	l := list.New(items, list.NewDefaultDelegate(), w, h)
	l.Title = title
	l.DisableQuitKeybindings()
	return l
}

func (m *Model) openTape() tea.Cmd {
	m.tapeFrom = m.view
	m.view = TapeView
	m.status, m.err = "", nil
	return m.loadTape()
}

func (m *Model) addSelected(side models.Side) tea.Cmd {
	item, ok := m.trackList.SelectedItem().(songItem)
	if !ok {
		return nil
	}
	tapes, songID, title := m.tapes, item.song.SongID, item.song.Title
	return func() tea.Msg {
		entry, err := tapes.AddToTape(side, songID)
		if err != nil {
			return tapeChangedMsg("", err)
		}
		return tapeChangedMsg(fmt.Sprintf("Added '%s' to side %s at %d", title, entry.Side, entry.Position), nil)
	}
}

func (m *Model) removeEntry(entry models.TapeEntry) tea.Cmd {
	tapes := m.tapes
	return func() tea.Msg {
		if err := tapes.RemoveFromTape(entry.ID); err != nil {
			return tapeChangedMsg("", err)
		}
		return tapeChangedMsg(fmt.Sprintf("Removed '%s' from side %s", entry.Title, entry.Side), nil)
	}
}

func (m *Model) loadArtists() tea.Cmd {
	library := m.library
	return func() tea.Msg {
		artists, err := library.UniqueValues(models.ColArtist)
		return artistsLoadedMsg(artists, err)
	}
}

func (m *Model) loadReleases(artist string) tea.Cmd {
	library := m.library
	return func() tea.Msg {
		releases, err := library.Browse(models.ColArtist, artist)
		return releasesLoadedMsg(artist, releases, err)
	}
}

func (m *Model) loadTracks(release models.Release) tea.Cmd {
	tapes, ctx := m.tapes, m.ctx
	return func() tea.Msg {
		songs, err := tapes.Tracks(ctx, nil, release.ReleaseID)
		return tracksLoadedMsg(release, songs, err)
	}
}

func (m *Model) loadTape() tea.Cmd {
	tapes := m.tapes
	return func() tea.Msg {
		tape, err := tapes.Tape()
		if err != nil {
			return tapeLoadedMsg(nil, nil, err)
		}
		stats, err := tapes.Stats()
		return tapeLoadedMsg(tape, stats, err)
	}
}

// startRefresh runs the refresh in a goroutine. Its result arrives on done, so the
// progress channel is never closed while the engine may still send on it.
func (m *Model) startRefresh() tea.Cmd {
	if m.refresher == nil {
		m.err = fmt.Errorf("%w: refresh not configured", shared.ErrUpstreamUnavailable)
		return nil
	}

	m.view = RefreshView
	m.refreshing = true
	m.progress = tasks.ProgressUpdate{}
	m.result, m.err = nil, nil
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan Msg, 1)

	refresher, ctx, progress, done := m.refresher, m.ctx, m.progressChan, m.done
	go func() {
		result, err := refresher.Refresh(ctx, progress)
		done <- refreshCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	var b strings.Builder
	b.WriteString(l.View())
	b.WriteString("\n")
	if line := m.renderStatus(); line != "" {
		b.WriteString("\n" + line + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView(keys))
	return b.String()
}

func (m *Model) renderStatus() string {
	switch {
	case errors.Is(m.err, shared.ErrNotMirrored):
		return styles.warn.Render("Collection not mirrored yet, press r to refresh")
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.status != "":
		return styles.ok.Render(m.status)
	default:
		return ""
	}
}

func (m *Model) renderTape() string {
	var b strings.Builder
	for _, s := range m.stats {
		b.WriteString(styles.side.Render(fmt.Sprintf("Side %s", s.Side)))
		b.WriteString(fmt.Sprintf("  %d tracks • %s\n", s.Tracks, s.Total))
	}
	b.WriteString("\n")
	b.WriteString(m.renderList(m.tapeList, m.keys.remove, m.keys.back, m.keys.quit))
	return b.String()
}

func (m *Model) renderRefresh() string {
	title := styles.title.Render("Refreshing Collection")

	if !m.refreshing {
		back := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		if m.err != nil {
			return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render(fmt.Sprintf("Refresh failed: %v", m.err)), back)
		}
		if m.result == nil {
			return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render("No result available"), back)
		}
		info := fmt.Sprintf(
			"\nPages: %d\nReleases fetched: %d\nReleases stored: %d\nYears backfilled: %d",
			m.result.Pages,
			m.result.ReleasesFetched,
			m.result.ReleasesStored,
			m.result.YearsBackfilled,
		)
		return fmt.Sprintf("%s\n%s%s\n\n%s", title, styles.ok.Render("✓ Refresh Complete!"), info, back)
	}

	var phase string
	switch {
	case m.progress.Total == 0 && m.progress.Message == "":
		phase = "Starting..."
	case m.progress.Phase == tasks.FetchCollection:
		phase = fmt.Sprintf("Fetching collection (page %d/%d)", m.progress.Step, m.progress.Total)
	case m.progress.Phase == tasks.BackfillYears:
		phase = fmt.Sprintf("Backfilling years (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Replacing mirrored releases..."
	}

	return fmt.Sprintf("%s\n%s\n%s", title, phase, m.progress.Message)
}
