// Package state persists the frame's durable selection and cursor record.
//
// # Overview
//
// The record survives reboots and power loss. It holds the active app and
// one cursor per app: an index into the app's ordered file list for the
// gallery, APOD and XKCD apps, and the resync countdown for the clock.
//
// # File Format
//
// The record is a single JSON object at a fixed path:
//
//	{
//	  "active_app": "gallery",
//	  "gallery_cursor": 3,
//	  "apod_cursor": 0,
//	  "xkcd_cursor": 9,
//	  "clock_cursor": 12
//	}
//
// Every mutation rewrites the whole file through a temporary file and a
// rename, so a crash leaves either the previous record or the new one.
//
// # Recovery
//
// Load never fails. A missing file, a truncated write, malformed JSON, an
// unknown app name or a negative cursor all produce the default record
// (gallery selected, every cursor zero). Everything except a missing file is
// logged. Exists reports whether a well-formed record was found, which the
// launcher uses to decide whether to show the app menu at boot.
//
// Cursors read from disk are not trusted against the current file counts;
// callers clamp them with Clamp once they know how many items exist.
//
// # Concurrency
//
// The store is owned by the single wake loop. It has no locking.
package state
