// Package services defines the [Library] interface for the Spotify Web API and implements it in [SpotifyService].
//
// # Library Interface
//
// The shuffle pipeline and the CLI depend on [Library] rather than the concrete client, so tests can substitute fakes.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates every request with a bearer access token obtained by the auth package.
// Requests pass through a token-bucket limiter ([rate.Limiter]) before hitting the network.
//
// # Pagination
//
// Track and playlist listings are cursor-paginated. Readers follow the "next" URL until it is null,
// then verify the collected item count against the advertised total.
// A short read returns [shared.ErrIncompleteRead] instead of a silent partial result.
//
// # Batched Writes
//
// [SpotifyService.ReplaceTracks] clears the playlist with a single PUT, then appends URIs in
// chunks of at most 100 via sequential POSTs carrying explicit ascending positions.
// A failed chunk aborts the write without rolling back earlier chunks.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrTransport] : the HTTP request never completed
//   - [shared.ErrAPIRequest] : the API returned a non-2xx status
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
//   - [shared.ErrIncompleteRead] : pagination ended before the advertised total
package services
