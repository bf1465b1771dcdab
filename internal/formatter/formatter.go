// package formatter renders playlists and snapshots to CSV, Markdown, and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jumbler/jumbler/internal/models"
	"github.com/jumbler/jumbler/internal/shared"
)

// ExportToCSV converts a playlist's track listing to CSV with columns: Position, URI, Title, Artist
func ExportToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "URI", "Title", "Artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range playlist.Tracks {
		record := []string{
			strconv.Itoa(track.Position),
			track.URI,
			track.Title,
			track.Artist,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown
func ExportToMarkdown(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))

	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(playlist.Tracks)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", visibility(playlist.Public)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text
func ExportToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(playlist.Tracks)))

	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// SnapshotToText renders a snapshot's stored order as plain text
func SnapshotToText(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Snapshot: %s\n", snapshot.ID))
	buf.WriteString(fmt.Sprintf("Playlist: %s (%s)\n", snapshot.PlaylistName, snapshot.PlaylistID))
	buf.WriteString(fmt.Sprintf("Taken: %s\n", snapshot.TakenAt.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", snapshot.TrackCount))

	for i, track := range snapshot.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	playlist.Tracks = nil
	return shared.MarshalJSON(playlist, true)
}

// ExportResult contains the paths of files created by WriteExport
type ExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteExport writes a playlist to {base}_tracks.csv and {base}_metadata.json.
//
// Defaults to the playlist ID as the base filename.
func WriteExport(playlist *models.Playlist, baseFilepath string) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = playlist.ID
	}

	if dir := filepath.Dir(baseFilepath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	csvData, err := ExportToCSV(playlist)
	if err != nil {
		return nil, err
	}
	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write tracks file: %w", err)
	}

	metadata, err := ToMetadataJSON(*playlist)
	if err != nil {
		return nil, err
	}
	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadata, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &ExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

func visibility(public bool) string {
	if public {
		return "public"
	}
	return "private"
}
