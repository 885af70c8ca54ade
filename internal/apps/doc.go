// Package apps implements the four frame apps: the photo gallery, NASA's
// Astronomy Picture of the Day, the daily xkcd comic and the clock.
//
// # Lifecycle
//
// The scheduler calls Update once per wake with the Command derived from
// the wake, then Draw. Update owns the app's cursor in the durable state
// store and persists it before returning, even when it did not change.
// Draw always leaves a showable canvas; decode failures render a fixed
// error message instead.
//
// # Daily-fetch apps
//
// APOD and xkcd share one state machine. Today's image is cached as
// <prefix>_YYYY-MM-DD.jpg. When it is already cached the cursor points at
// it, or steps on Forward and Backward. Otherwise it is downloaded into a
// staging file; content identical to a cached file is discarded and the
// cursor aliased to the existing entry, new content is appended and
// selected. A failed download leaves cursor and cache untouched, returns
// an error wrapping ErrFetch and makes Draw show a banner.
//
// # Gallery
//
// The gallery walks the sorted listing of a local directory, skipping
// anything that is not a JPEG. Timer wakes advance it.
//
// # Clock
//
// The clock's cursor counts wakes. Every SyncThreshold wakes, or on
// Resync, it reads the time from an HTTP Date header.
package apps
