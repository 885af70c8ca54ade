package render

// Fixed text of the draw-failure screen.
const (
	DisplayErrorLine1 = "Unable to display image!"
	DisplayErrorLine2 = "Check your network settings or SD card."

	// DownloadError is the banner shown after a failed fetch.
	DownloadError = "Unable to download image"
)

const (
	textScale     = 2
	captionHeight = 32
	bannerTop     = 10
	bannerHeight  = 35
)

// ErrorBanner draws a red strip near the top of the screen with text.
func ErrorBanner(c *Canvas, text string) {
	c.SetPen(Red)
	c.Rect(0, bannerTop, c.Width(), bannerHeight)
	c.SetPen(White)
	c.Text(Truncate(text, c.Width()-10, textScale), 5, bannerTop+(bannerHeight-GlyphHeight*textScale)/2, textScale)
}

// ErrorMessage draws the two-line draw-failure message across the middle
// of the screen.
func ErrorMessage(c *Canvas) {
	mid := c.Height() / 2
	lh := LineHeight(textScale)
	c.SetPen(Red)
	c.Rect(0, mid-lh-4, c.Width(), 2*lh+8)
	c.SetPen(White)
	c.Text(Truncate(DisplayErrorLine1, c.Width()-10, textScale), 5, mid-lh, textScale)
	c.Text(Truncate(DisplayErrorLine2, c.Width()-10, textScale), 5, mid, textScale)
}

// Caption draws a black title bar along the bottom edge.
func Caption(c *Canvas, title string) {
	c.SetPen(Black)
	c.Rect(0, c.Height()-captionHeight, c.Width(), captionHeight)
	c.SetPen(White)
	y := c.Height() - captionHeight + (captionHeight-GlyphHeight*textScale)/2
	c.Text(Truncate(title, c.Width()-10, textScale), 5, y, textScale)
}

// StatusLine draws a single line of small text in a green strip at the top.
func StatusLine(c *Canvas, text string) {
	c.SetPen(Green)
	c.Rect(0, 0, c.Width(), GlyphHeight+3)
	c.SetPen(White)
	c.Text(Truncate(text, c.Width()-4, 1), 2, 1, 1)
}

// FatalScreen replaces the whole frame with a report of a condition the
// current cycle could not recover from.
func FatalScreen(c *Canvas, title, detail string) {
	c.SetPen(White)
	c.Clear()
	c.SetPen(Red)
	c.Rect(0, 0, c.Width(), 60)
	c.SetPen(White)
	c.Text(Truncate(title, c.Width()-20, 3), 10, (60-GlyphHeight*3)/2, 3)
	c.SetPen(Black)
	c.TextWrap(detail, 10, 80, c.Width()-20, textScale)
}
