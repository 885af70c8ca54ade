// Package fetch provides the HTTP client the frame uses to reach the
// outside world.
//
// # Overview
//
// Three operations cover every network need of the apps:
//
//   - Download: stream an image feed into a writer
//   - FetchJSON: decode a small JSON document (APOD metadata, xkcd info)
//   - ServerTime: read the Date header of a HEAD response for time sync
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Include User-Agent: inkframe/0.1
//   - Have a one-minute timeout by default (configurable via NewClient)
//
// Downloads are copied through a fixed 1 KiB buffer so memory use does not
// grow with the image size.
//
// # Error Handling
//
// Connection failures, timeouts, truncated bodies and HTTP status codes of
// 400 and above all wrap ErrUnavailable. Apps check for it with errors.Is
// and surface a banner instead of failing the cycle. Query strings are
// dropped from error messages because the APOD URL carries an API key.
//
// # Testing
//
// The Fetcher interface is what apps depend on; tests use httptest servers
// against the real Client or small in-memory fakes.
package fetch
