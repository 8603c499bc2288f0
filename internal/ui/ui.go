package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/services"
	"github.com/khinvi/spotify-apple-music-converter/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	ConvertView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx              context.Context
	view             ViewState
	source           services.SourceCatalog
	converter        *tasks.Converter
	width            int
	height           int
	playlistList     list.Model
	playlists        []models.Playlist
	trackList        list.Model
	selectedPlaylist *models.Playlist
	tracks           []models.SpotifyTrack
	progress         *tasks.ChannelProgress
	snapshot         models.ConversionProgress
	result           *models.PlaylistConversionResult
	err              error
	help             help.Model
	keys             keyMap
}

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type tracksFetchedMsg struct {
	tracks []models.SpotifyTrack
	err    error
}

type progressMsg models.ConversionProgress

type convertDoneMsg struct {
	result *models.PlaylistConversionResult
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source services.SourceCatalog, converter *tasks.Converter) *Model {
	return &Model{
		ctx:       ctx,
		view:      PlaylistListView,
		source:    source,
		converter: converter,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by fetching playlists from Spotify.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Spotify Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.tracks = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", m.selectedPlaylist.Name)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case progressMsg:
		m.snapshot = models.ConversionProgress(msg)
		return m, m.waitForProgress()

	case convertDoneMsg:
		m.result = msg.result
		m.view = ResultView
		m.progress = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case ConvertView:
		return m.renderConvert()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				playlist := pl.playlist
				m.selectedPlaylist = &playlist
				return m, m.fetchTracks(playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = TrackListView
		return m, nil
	case "y":
		m.view = ConvertView
		return m, m.startConversion()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selectedPlaylist = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.source.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.source.ListAllTracks(m.ctx, playlistID)
		return tracksFetchedMsg{tracks: tracks, err: err}
	}
}

func (m *Model) startConversion() tea.Cmd {
	m.progress = tasks.NewChannelProgress(50)

	progress := m.progress
	go func() {
		m.result = m.converter.ConvertPlaylist(m.ctx, *m.selectedPlaylist, progress.Callback())
		progress.Close()
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progress == nil {
			return convertDoneMsg{result: m.result}
		}

		update, ok := <-m.progress.Updates()
		if !ok {
			return convertDoneMsg{result: m.result}
		}
		return progressMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	convertKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "convert"),
	)
	helpKeys := []key.Binding{convertKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Convert '%s' to Apple Music?", m.selectedPlaylist.Name))
	info := fmt.Sprintf("\nPlaylist: %s\nTracks: %d\n", m.selectedPlaylist.Name, len(m.tracks))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderConvert() string {
	title := styles.title.Render("Converting Playlist")

	var status string
	if m.snapshot.Total > 0 {
		status = fmt.Sprintf("Matching tracks (%d/%d)\n%d matched, %d missed",
			m.snapshot.Completed, m.snapshot.Total, m.snapshot.Successful, m.snapshot.Failed)
	} else {
		status = "Preparing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, status, m.snapshot.CurrentTrack)
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	if m.result.Err != "" {
		return styles.err.Render(fmt.Sprintf("Conversion failed: %s\n\nPress r to retry, q to quit", m.result.Err))
	}

	title := styles.ok.Render("✓ Conversion Complete!")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nApple Music playlist: %s\nMatched: %d/%d (%.1f%%)",
		m.result.Playlist.Name,
		m.result.ApplePlaylistID,
		m.result.SuccessfulTracks,
		m.result.TotalTracks,
		m.result.SuccessRate()*100,
	)

	var failed string
	if m.result.FailedTracks > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to match %d tracks:", m.result.FailedTracks)))
		for _, track := range m.result.Results {
			if track.Status == models.StatusFailed {
				failed += fmt.Sprintf("\n  • %s - %s", track.SpotifyTrack.PrimaryArtist(), track.SpotifyTrack.Title)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
