// Package httputil fetches remote atlas documents over HTTP.
//
// # Overview
//
// Documents can live on disk or behind a URL. This package provides the
// HTTP side:
//
//   - [Fetch]: GET a document body with automatic retry
//   - [Retry]: exponential-backoff retry for transient failures
//   - [Cache]: file-based response caching with TTL
//
// # Fetching
//
// [Fetch] retries network errors and 5xx responses; 4xx responses fail
// immediately since repeating them cannot help:
//
//	data, err := httputil.Fetch(ctx, nil, "https://example.com/floors.json")
//
// # Caching
//
// [Cache] stores fetched bodies under ~/.cache/atlas/ keyed by URL, so
// repeated opens of the same remote document skip the network while the
// entry is fresh. Clear it by deleting the directory or via
// `atlas cache clear`.
package httputil
