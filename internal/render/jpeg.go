package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
)

var (
	// ErrProgressive is returned for progressive or hierarchical JPEGs,
	// which the panel pipeline does not decode.
	ErrProgressive = errors.New("progressive jpeg not supported")
	// ErrTooLarge is returned for images larger than the panel.
	ErrTooLarge = errors.New("image larger than panel")
	// ErrMalformed is returned when the data is not a readable JPEG.
	ErrMalformed = errors.New("malformed jpeg")
)

const (
	markerSOI = 0xd8
	markerEOI = 0xd9
	markerSOS = 0xda
	markerTEM = 0x01
	markerDHT = 0xc4
	markerJPG = 0xc8
	markerDAC = 0xcc
)

// DecodeJPEGFile opens path and decodes it with DecodeJPEG.
func DecodeJPEGFile(path string, bounds image.Rectangle) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeJPEG(f, bounds)
}

// DecodeJPEG decodes a baseline JPEG no larger than bounds. The frame
// header is checked first so unsupported files fail before any pixel data
// is read.
func DecodeJPEG(r io.ReadSeeker, bounds image.Rectangle) (image.Image, error) {
	if err := checkBaseline(bufio.NewReaderSize(r, 512)); err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind image: %w", err)
	}
	cfg, err := jpeg.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if cfg.Width > bounds.Dx() || cfg.Height > bounds.Dy() {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d",
			ErrTooLarge, cfg.Width, cfg.Height, bounds.Dx(), bounds.Dy())
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind image: %w", err)
	}
	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return img, nil
}

// checkBaseline walks the marker segments up to the first frame header.
func checkBaseline(br *bufio.Reader) error {
	var soi [2]byte
	if _, err := io.ReadFull(br, soi[:]); err != nil || soi[0] != 0xff || soi[1] != markerSOI {
		return fmt.Errorf("%w: missing start of image", ErrMalformed)
	}
	for {
		m, err := nextMarker(br)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch {
		case m == 0xc0 || m == 0xc1:
			return nil
		case m >= 0xc2 && m <= 0xcf && m != markerDHT && m != markerJPG && m != markerDAC:
			return fmt.Errorf("%w: frame type 0x%02x", ErrProgressive, m)
		case m == markerSOS || m == markerEOI:
			return fmt.Errorf("%w: no frame header", ErrMalformed)
		case m == markerTEM || (m >= 0xd0 && m <= 0xd7):
			continue
		}
		var size [2]byte
		if _, err := io.ReadFull(br, size[:]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		n := int(binary.BigEndian.Uint16(size[:]))
		if n < 2 {
			return fmt.Errorf("%w: bad segment length", ErrMalformed)
		}
		if _, err := br.Discard(n - 2); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
}

func nextMarker(br *bufio.Reader) (byte, error) {
	b, err := br.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xff {
		return 0, fmt.Errorf("expected marker, got 0x%02x", b)
	}
	for b == 0xff {
		if b, err = br.ReadByte(); err != nil {
			return 0, err
		}
	}
	return b, nil
}
