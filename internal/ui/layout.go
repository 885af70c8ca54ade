package ui

import "time"

// Terminal width below which the header drops labels.
const LayoutCompactWidth = 100

// Log pane limits.
const (
	// LogReadLimit is the number of trailing log lines read per refresh.
	LogReadLimit = 500

	// MinPreviewRows keeps the log pane from squeezing the preview away.
	MinPreviewRows = 6
)

// Timing constants.
const (
	// DefaultUIInterval is the default snapshot refresh interval.
	DefaultUIInterval = 250 * time.Millisecond

	// FlashDuration is how long an action confirmation stays in the footer.
	FlashDuration = 2 * time.Second
)
