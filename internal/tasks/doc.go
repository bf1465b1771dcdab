// Package tasks orchestrates the shuffle pipeline with real-time progress reporting.
//
// # Core Operation
//
// The [ShuffleEngine] interface defines a single operation:
//
//	[ShuffleEngine.Run] : Full shuffle of one playlist
//	  - Fetches the authenticated user's profile
//	  - Reads the complete playlist, following pagination to the end
//	  - Records a snapshot of the original order (undo point)
//	  - Permutes the track URIs with Fisher-Yates
//	  - Writes the permutation to the source playlist or a newly created one
//
// # Progress Reporting
//
// All phases emit [ProgressUpdate] values on an optional channel.
// Updates use select with default so a slow or absent consumer never blocks the run.
//
// # Snapshots
//
// The [SnapshotRecorder] interface decouples the pipeline from storage.
// A failed snapshot is logged and the run continues; the undo point is lost, the shuffle is not.
//
// # Implementation
//
// [PlaylistEngine] implements [ShuffleEngine] with dependencies on:
//   - [services.Library] : Spotify API client
//   - [SnapshotRecorder] : persistence layer (repositories.SnapshotRepository)
//   - [Shuffler] : permutation source, seedable for reproducible runs
package tasks
