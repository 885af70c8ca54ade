package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

// upperHalf paints its top pixel in the foreground and its bottom pixel in
// the background, so one terminal cell carries two rows of the frame.
const upperHalf = "▀"

// previewSize fits an image with bounds b into at most maxCols by maxRows
// terminal cells. Rows count cells, each holding two pixel rows.
func previewSize(b image.Rectangle, maxCols, maxRows int) (cols, rows int) {
	if b.Empty() || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols = maxCols
	pixH := cols * b.Dy() / b.Dx()
	if (pixH+1)/2 > maxRows {
		pixH = maxRows * 2
		cols = pixH * b.Dx() / b.Dy()
	}
	rows = (pixH + 1) / 2
	return max(cols, 1), max(rows, 1)
}

// renderPreview scales img to cols by rows cells and renders it with half
// blocks.
func renderPreview(img image.Image, cols, rows int) []string {
	if img == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	lines := make([]string, rows)
	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.Reset()
		for x := 0; x < cols; x++ {
			cell := lipgloss.NewStyle().
				Foreground(hexColor(dst.RGBAAt(x, 2*r))).
				Background(hexColor(dst.RGBAAt(x, 2*r+1)))
			b.WriteString(cell.Render(upperHalf))
		}
		lines[r] = b.String()
	}
	return lines
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// previewCache keeps the last rendered preview so it is redrawn only when
// the frame or the space for it changes.
type previewCache struct {
	version int
	valid   bool
	cols    int
	rows  int
	lines []string
}

func (c *previewCache) render(img image.Image, version, maxCols, maxRows int) []string {
	if img == nil {
		c.valid, c.lines = false, nil
		return nil
	}
	cols, rows := previewSize(img.Bounds(), maxCols, maxRows)
	if c.valid && version == c.version && cols == c.cols && rows == c.rows {
		return c.lines
	}
	c.valid, c.version, c.cols, c.rows = true, version, cols, rows
	c.lines = renderPreview(img, cols, rows)
	return c.lines
}
