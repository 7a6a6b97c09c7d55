// Package models defines the caller-facing records emitted by ytfetch.
//
// Every record is built once per invocation, printed once as a single JSON line and never
// mutated afterwards:
//   - [Track] : one playable item (video id, title, channel, derived thumbnail, duration)
//   - [Playlist] : ordered tracks plus descriptive metadata, built only through [NewPlaylist]
//   - [SearchResults] : relevance-ordered tracks, built through [NewSearchResults]
//   - [PlaylistRef] : an extracted playlist id with its canonical URL
//
// Thumbnails are derived from the video id with [ThumbnailURL]; no network call is involved.
package models
