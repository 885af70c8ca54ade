package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var panel = image.Rect(0, 0, 800, 480)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0x80, 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestDecodeJPEG_Baseline(t *testing.T) {
	data := encodeJPEG(t, 64, 32)
	img, err := DecodeJPEG(bytes.NewReader(data), panel)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())
}

func TestDecodeJPEG_TooLarge(t *testing.T) {
	data := encodeJPEG(t, 801, 10)
	_, err := DecodeJPEG(bytes.NewReader(data), panel)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDecodeJPEG_Progressive(t *testing.T) {
	data := []byte{
		0xff, 0xd8,
		0xff, 0xe0, 0x00, 0x04, 'J', 'F',
		0xff, 0xc2, 0x00, 0x0b, 0x08, 0x00, 0x10, 0x00, 0x10, 0x01, 0x01, 0x11, 0x00,
	}
	_, err := DecodeJPEG(bytes.NewReader(data), panel)
	assert.ErrorIs(t, err, ErrProgressive)
}

func TestDecodeJPEG_Malformed(t *testing.T) {
	good := encodeJPEG(t, 16, 16)
	tests := map[string][]byte{
		"empty":     {},
		"not jpeg":  []byte("\x89PNG\r\n\x1a\n"),
		"truncated": good[:len(good)/3],
		"no frame":  {0xff, 0xd8, 0xff, 0xd9},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJPEG(bytes.NewReader(data), panel)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Moon", "Moon"},
		{"Comète Ñandú", "Comete Nandu"},
		{"ﬁre", "fire"},
		{"tab\there", "tab here"},
		{"星雲", "??"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), tt.in)
	}
}

func TestMeasureText(t *testing.T) {
	assert.Equal(t, 7*5, MeasureText("HH:MM", 1))
	assert.Equal(t, 7*5*4, MeasureText("HH:MM", 4))
	assert.Equal(t, 0, MeasureText("", 3))
}

func TestWrap(t *testing.T) {
	lines := Wrap("the quick brown fox", 7*10, 1)
	assert.Equal(t, []string{"the quick", "brown fox"}, lines)

	lines = Wrap("abcdefghijkl", 7*5, 1)
	assert.Equal(t, []string{"abcde", "fghij", "kl"}, lines)

	assert.Nil(t, Wrap("   ", 100, 1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100, 1))
	got := Truncate("a rather long title", 7*10, 1)
	assert.LessOrEqual(t, MeasureText(got, 1), 7*10)
	assert.Contains(t, got, "...")
}

func TestFitScale(t *testing.T) {
	assert.Equal(t, 4, FitScale("HH:MM", 7*5*4, 10))
	assert.Equal(t, 1, FitScale("HH:MM", 1, 10))
}

func TestCanvas_RectClips(t *testing.T) {
	c := NewCanvas(image.Rect(0, 0, 10, 10))
	c.SetPen(Red)
	c.Rect(5, 5, 100, 100)

	assert.Equal(t, Red.Color(), c.Image().RGBAAt(9, 9))
	assert.Equal(t, White.Color(), c.Image().RGBAAt(4, 4))
}

func TestCanvas_TextDrawsInPen(t *testing.T) {
	c := NewCanvas(image.Rect(0, 0, 40, 30))
	c.SetPen(Blue)
	c.Text("H", 0, 0, 2)

	var blue int
	b := c.Image().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c.Image().RGBAAt(x, y) == Blue.Color() {
				blue++
				assert.Less(t, x, 14)
				assert.Less(t, y, 26)
			}
		}
	}
	assert.Positive(t, blue)
}

func TestCanvas_Line(t *testing.T) {
	c := NewCanvas(image.Rect(0, 0, 5, 5))
	c.SetPen(Black)
	c.Line(0, 0, 4, 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, Black.Color(), c.Image().RGBAAt(i, i))
	}
	assert.Equal(t, White.Color(), c.Image().RGBAAt(4, 0))
}

func TestHSV(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, HSV(0, 1, 1))
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, HSV(0.5, 1, 1))
	assert.Equal(t, HSV(0.25, 1, 1), HSV(1.25, 1, 1))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, HSV(0.5, 1, 0))
}

func TestErrorMessageUsesRed(t *testing.T) {
	c := NewCanvas(panel)
	ErrorMessage(c)
	assert.Equal(t, Red.Color(), c.Image().RGBAAt(799, panel.Dy()/2))
}
