package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/jumbler/jumbler/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.Total)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }

// Title prefixes the 1-based position so the pre-shuffle order is visible.
func (i trackItem) Title() string {
	return fmt.Sprintf("%d. %s", i.track.Position+1, i.track.Title)
}
func (i trackItem) Description() string {
	if i.track.Artist == "" {
		return i.track.URI
	}
	return i.track.Artist
}
