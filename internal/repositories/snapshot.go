// package repositories provides the persistence layer for playlist snapshots.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jumbler/jumbler/internal/models"
	"github.com/jumbler/jumbler/internal/shared"
)

// SnapshotRepository stores pre-shuffle playlist snapshots in sqlite.
//
// Implements tasks.SnapshotRecorder.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts a snapshot and its track listing atomically, returning the generated ID.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.Snapshot) (string, error) {
	id := shared.GenerateID()
	takenAt := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO snapshots (id, playlist_id, playlist_name, track_count, taken_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, id, snapshot.PlaylistID, snapshot.PlaylistName, snapshot.TrackCount, takenAt); err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	trackQuery := `
		INSERT INTO snapshot_tracks (snapshot_id, position, uri, title, artist)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, track := range snapshot.Tracks {
		if _, err := tx.ExecContext(ctx, trackQuery, id, track.Position, track.URI, track.Title, track.Artist); err != nil {
			return "", fmt.Errorf("failed to insert snapshot track %d: %w", track.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	snapshot.ID = id
	snapshot.TakenAt = takenAt
	return id, nil
}

// Get retrieves a snapshot with its full track listing in stored order.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	query := `
		SELECT id, playlist_id, playlist_name, track_count, taken_at
		FROM snapshots
		WHERE id = ?
	`

	var snapshot models.Snapshot
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&snapshot.ID,
		&snapshot.PlaylistID,
		&snapshot.PlaylistName,
		&snapshot.TrackCount,
		&snapshot.TakenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	trackQuery := `
		SELECT position, uri, title, artist
		FROM snapshot_tracks
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, trackQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var track models.Track
		if err := rows.Scan(&track.Position, &track.URI, &track.Title, &track.Artist); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot track: %w", err)
		}
		snapshot.Tracks = append(snapshot.Tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot tracks: %w", err)
	}

	return &snapshot, nil
}

// Latest retrieves the most recent snapshot for a playlist.
func (r *SnapshotRepository) Latest(ctx context.Context, playlistID string) (*models.Snapshot, error) {
	query := `
		SELECT id
		FROM snapshots
		WHERE playlist_id = ?
		ORDER BY taken_at DESC
		LIMIT 1
	`

	var id string
	err := r.db.QueryRowContext(ctx, query, playlistID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no snapshots for playlist %s", shared.ErrSnapshotNotFound, playlistID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	return r.Get(ctx, id)
}

// List retrieves snapshot metadata, newest first, without track listings.
// An empty playlistID lists snapshots for every playlist.
func (r *SnapshotRepository) List(ctx context.Context, playlistID string) ([]models.Snapshot, error) {
	query := `
		SELECT id, playlist_id, playlist_name, track_count, taken_at
		FROM snapshots
	`
	args := []any{}
	if playlistID != "" {
		query += " WHERE playlist_id = ?"
		args = append(args, playlistID)
	}
	query += " ORDER BY taken_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var snapshot models.Snapshot
		if err := rows.Scan(&snapshot.ID, &snapshot.PlaylistID, &snapshot.PlaylistName, &snapshot.TrackCount, &snapshot.TakenAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	return snapshots, nil
}

// Delete removes a snapshot and its tracks.
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_tracks WHERE snapshot_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete snapshot tracks: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}

	return tx.Commit()
}

// Prune deletes all but the newest keep snapshots for a playlist, returning
// the number removed. An empty playlistID prunes every playlist independently.
func (r *SnapshotRepository) Prune(ctx context.Context, playlistID string, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep must be non-negative", shared.ErrInvalidArgument)
	}

	snapshots, err := r.List(ctx, playlistID)
	if err != nil {
		return 0, err
	}

	// List is newest first; group per playlist and drop everything past keep.
	counts := map[string]int{}
	removed := 0
	for _, snapshot := range snapshots {
		counts[snapshot.PlaylistID]++
		if counts[snapshot.PlaylistID] <= keep {
			continue
		}
		if err := r.Delete(ctx, snapshot.ID); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}
