// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for shuffling a playlist:
//  1. [PlaylistListView] : Browse and select one of your playlists
//  2. [TrackListView] : Preview the current order before shuffling
//  3. [ConfirmView] : Confirm the shuffle and its write target
//  4. [ShuffleView] : Monitor real-time progress updates
//  5. [ResultView] : Display the written playlist and snapshot id
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PlaylistEngine, providing non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
