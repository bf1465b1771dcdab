// package models defines the domain types shared across jumbler's packages
package models

import "time"

// Track is one playlist entry. Jumbler only needs the URI and position to
// rewrite an order; title and artist ride along for display and snapshots.
type Track struct {
	URI      string `json:"uri"`
	Position int    `json:"position"`
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
}

// Playlist is a fully materialized playlist: metadata plus every track in
// server order. Total reflects the server-reported count, which must match
// len(Tracks) once a read is complete.
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	URI         string  `json:"uri,omitempty"`
	Public      bool    `json:"public"`
	Total       int     `json:"total"`
	Tracks      []Track `json:"tracks,omitempty"`
}

// URIs returns the track URIs in playlist order.
func (p *Playlist) URIs() []string {
	uris := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		uris[i] = t.URI
	}
	return uris
}

// User is the authenticated Spotify account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Snapshot records a playlist's track order at a point in time, so a
// shuffle can be undone.
type Snapshot struct {
	ID           string    `json:"id"`
	PlaylistID   string    `json:"playlist_id"`
	PlaylistName string    `json:"playlist_name"`
	TrackCount   int       `json:"track_count"`
	TakenAt      time.Time `json:"taken_at"`
	Tracks       []Track   `json:"tracks,omitempty"`
}

// URIs returns the snapshot's track URIs in recorded order.
func (s *Snapshot) URIs() []string {
	uris := make([]string, len(s.Tracks))
	for i, t := range s.Tracks {
		uris[i] = t.URI
	}
	return uris
}
