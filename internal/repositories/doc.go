// Package repositories implements SQLite persistence for playlist snapshots.
//
// A snapshot records the exact track order of a playlist before a shuffle
// rewrites it, giving the restore command something to write back.
//
// Key Implementation:
//   - [SnapshotRepository] : snapshot metadata plus a position-ordered track listing,
//     written atomically in one transaction
//
// Snapshot rows carry UUID identifiers from [shared.GenerateID]. Track rows key on
// (snapshot_id, position) so a listing reads back in exactly the order it was taken.
package repositories
