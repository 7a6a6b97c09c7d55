// Package services implements the strategies that fetch YouTube data.
//
// # Strategies
//
// Every strategy satisfies [Strategy] for one result type and is selected by name from
// configuration through a [Registry]:
//   - [YtDLPSearch], [YTMusicSearch] and [ScrapeSearch] produce [models.SearchResults]
//   - [YtDLPJSONPlaylist], [YtDLPPlaylist], [InnertubePlaylist] and [ScrapePlaylist] produce [*models.Playlist]
//
// # yt-dlp
//
// [YtDLP] wraps the external yt-dlp executable. Each call runs under its own timeout. A missing
// binary becomes [shared.ErrToolNotFound], an expired timeout [shared.ErrTimeout] and any other
// non-zero exit [shared.ErrUpstream] carrying the child's stderr.
//
// [YtDLP.Stream] pipes audio bytes to a writer in fixed-size chunks and reports the child's exit code.
//
// # Delimited lines
//
// The yt-dlp strategies print one record per line with fields joined by [FieldSeparator].
// [ParseTrackLine] turns one line into a [models.Track]; [ParseTrackLines] skips and logs bad lines.
//
// # Scraping
//
// [Scraper] fetches result and playlist pages with a browser User-Agent and pulls video records
// out of the embedded initial data with regular expressions. It is the last resort in the default
// strategy orders.
//
// # Playlist URLs
//
// [ExtractPlaylistID] and [CanonicalPlaylistURL] are pure and never touch the network.
package services
