// Package tasks orchestrates the fetch operations behind each subcommand.
//
// # Strategy Chains
//
// [RunChain] tries an ordered list of [services.Strategy] values, wrapping each in a
// [retry.Policy]. The first success wins. When every strategy fails the returned error wraps
// [shared.ErrAllStrategiesFailed] together with each strategy's error, so callers can still test
// for a specific cause with errors.Is.
//
// # Core Operations
//
// The [FetchEngine] interface defines four operations:
//
//  1. [FetchEngine.Search] : free-text query → up to ten tracks
//  2. [FetchEngine.ImportPlaylist] : playlist URL → playlist with up to fifty tracks
//     - The playlist ID is extracted first; music.youtube.com URLs are rewritten to the main site
//  3. [FetchEngine.Stream] : video ID → audio bytes on a writer, using a configured preset
//  4. [FetchEngine.ResolvePlaylist] : playlist URL → ID and canonical URL, no network access
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate] values describing strategy attempts,
// retries and failures. Updates use select with default to prevent blocking, so a slow or absent
// reader never stalls a fetch.
package tasks
