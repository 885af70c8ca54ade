// Package cache keeps the bounded, deduplicated artifact directories used by
// the daily-fetch apps.
//
// Each directory holds the downloaded images for one app plus a JSON log
// mapping filename to display title. Filenames embed the fetch date as
// YYYY-MM-DD, so filename order is download order. The log is checked against
// the directory listing on every Reconcile and rebuilt from the listing when
// they disagree. At most MaxFiles entries are kept; the oldest are evicted
// first. Content duplicates are detected by SHA-256 digest and are never
// stored twice.
//
// Downloads are written through Stage, which keeps the bytes under a ".part"
// name until Commit. Reconcile deletes leftover ".part" files.
package cache
