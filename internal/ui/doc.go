// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist conversion:
//  1. [PlaylistListView] : Browse and select Spotify playlists
//  2. [TrackListView] : Preview tracks before converting
//  3. [ConfirmView] : Confirm the conversion
//  4. [ConvertView] : Monitor per-track progress
//  5. [ResultView] : Display match metrics and failed tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress snapshots flow through a channel from the Converter, providing non-blocking status reporting during conversion.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
