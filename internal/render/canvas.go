package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Pen indexes the panel's native seven-colour palette plus the clean/taupe
// slot the controller uses between refreshes.
type Pen uint8

const (
	Black Pen = iota
	White
	Green
	Blue
	Red
	Yellow
	Orange
	Taupe
)

// Palette holds the RGB approximation of each Pen, indexed by Pen.
var Palette = color.Palette{
	Black:  color.RGBA{0x00, 0x00, 0x00, 0xff},
	White:  color.RGBA{0xff, 0xff, 0xff, 0xff},
	Green:  color.RGBA{0x00, 0xa0, 0x3c, 0xff},
	Blue:   color.RGBA{0x1e, 0x3c, 0xc8, 0xff},
	Red:    color.RGBA{0xd2, 0x1e, 0x1e, 0xff},
	Yellow: color.RGBA{0xf5, 0xdc, 0x00, 0xff},
	Orange: color.RGBA{0xf0, 0x82, 0x14, 0xff},
	Taupe:  color.RGBA{0xd2, 0xbe, 0xa5, 0xff},
}

// Color returns the RGB value of p.
func (p Pen) Color() color.RGBA {
	if int(p) >= len(Palette) {
		return Palette[Black].(color.RGBA)
	}
	return Palette[p].(color.RGBA)
}

// Canvas is the frame buffer apps draw into. All primitives clip to the
// canvas bounds and use the current pen.
type Canvas struct {
	img *image.RGBA
	pen color.RGBA
}

// NewCanvas returns a white canvas with the given bounds.
func NewCanvas(bounds image.Rectangle) *Canvas {
	c := &Canvas{img: image.NewRGBA(bounds)}
	c.SetPen(White)
	c.Clear()
	c.SetPen(Black)
	return c
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Bounds returns the canvas bounds.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// SetPen selects a palette pen.
func (c *Canvas) SetPen(p Pen) { c.pen = p.Color() }

// SetColor selects an arbitrary colour, as produced by HSV. The panel
// driver dithers it down to the palette.
func (c *Canvas) SetColor(col color.Color) {
	c.pen = color.RGBAModel.Convert(col).(color.RGBA)
}

// Clear fills the whole canvas with the current pen.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.pen), image.Point{}, draw.Src)
}

// Rect fills the rectangle at (x, y) with size w×h.
func (c *Canvas) Rect(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	origin := c.img.Bounds().Min
	r := image.Rect(x, y, x+w, y+h).Add(origin).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(c.pen), image.Point{}, draw.Src)
}

// Line draws a one-pixel line between the two points, inclusive.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) set(x, y int) {
	origin := c.img.Bounds().Min
	p := image.Pt(x, y).Add(origin)
	if p.In(c.img.Bounds()) {
		c.img.SetRGBA(p.X, p.Y, c.pen)
	}
}

// DrawImage copies img onto the canvas with its top-left corner at at.
func (c *Canvas) DrawImage(img image.Image, at image.Point) {
	origin := c.img.Bounds().Min
	r := img.Bounds().Sub(img.Bounds().Min).Add(at).Add(origin)
	draw.Draw(c.img, r, img, img.Bounds().Min, draw.Src)
}

// HSV converts hue, saturation and value in [0, 1] to RGB. Hue wraps.
func HSV(h, s, v float64) color.RGBA {
	h = h - math.Floor(h)
	s = clamp01(s)
	v = clamp01(v)

	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{to8(r), to8(g), to8(b), 0xff}
}

func to8(f float64) uint8 { return uint8(math.Round(f * 255)) }

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
