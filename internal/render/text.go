package render

import (
	"image"
	"image/draw"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var face = basicfont.Face7x13

// GlyphHeight is the unscaled line height of the bitmap font.
const GlyphHeight = 13

// Fold maps s onto the printable ASCII range covered by the bitmap font.
// Accents are stripped after compatibility decomposition and any rune still
// outside the range becomes '?'.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case r < 0x20 || r > 0x7e:
			return '?'
		}
		return r
	}, folded)
}

// MeasureText returns the rendered width of s at the given scale.
func MeasureText(s string, scale int) int {
	if scale < 1 {
		scale = 1
	}
	return font.MeasureString(face, Fold(s)).Ceil() * scale
}

// Text draws s with its top-left corner at (x, y), each glyph pixel
// enlarged to scale×scale.
func (c *Canvas) Text(s string, x, y, scale int) {
	s = Fold(s)
	if s == "" {
		return
	}
	if scale < 1 {
		scale = 1
	}

	w := font.MeasureString(face, s).Ceil()
	mask := image.NewAlpha(image.Rect(0, 0, w, GlyphHeight))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	var src image.Image = mask
	if scale > 1 {
		big := image.NewAlpha(image.Rect(0, 0, w*scale, GlyphHeight*scale))
		xdraw.NearestNeighbor.Scale(big, big.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)
		src = big
	}

	origin := c.img.Bounds().Min
	r := src.Bounds().Add(image.Pt(x, y)).Add(origin)
	draw.DrawMask(c.img, r, image.NewUniform(c.pen), image.Point{}, src, image.Point{}, draw.Over)
}

// TextWrap draws s word-wrapped to width pixels and returns the number of
// lines drawn.
func (c *Canvas) TextWrap(s string, x, y, width, scale int) int {
	lines := Wrap(s, width, scale)
	for i, line := range lines {
		c.Text(line, x, y+i*LineHeight(scale), scale)
	}
	return len(lines)
}

// LineHeight returns the vertical advance of one text line at scale.
func LineHeight(scale int) int {
	if scale < 1 {
		scale = 1
	}
	return (GlyphHeight + 1) * scale
}

// Wrap breaks s into lines no wider than width at scale. Words longer than
// a line are split.
func Wrap(s string, width, scale int) []string {
	words := strings.Fields(Fold(s))
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := ""
	for _, word := range words {
		for MeasureText(word, scale) > width && len(word) > 1 {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			n := fitRunes(word, width, scale)
			lines = append(lines, word[:n])
			word = word[n:]
		}
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && MeasureText(candidate, scale) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Truncate shortens s with a trailing "..." so it fits width at scale.
func Truncate(s string, width, scale int) string {
	s = Fold(s)
	if MeasureText(s, scale) <= width {
		return s
	}
	const ellipsis = "..."
	for n := len(s) - 1; n > 0; n-- {
		candidate := strings.TrimRight(s[:n], " ") + ellipsis
		if MeasureText(candidate, scale) <= width {
			return candidate
		}
	}
	return ""
}

// FitScale returns the largest scale, at most maxScale, at which s fits width.
func FitScale(s string, width, maxScale int) int {
	for scale := maxScale; scale > 1; scale-- {
		if MeasureText(s, scale) <= width {
			return scale
		}
	}
	return 1
}

func fitRunes(s string, width, scale int) int {
	n := 1
	for n < len(s) && MeasureText(s[:n+1], scale) <= width {
		n++
	}
	return n
}
