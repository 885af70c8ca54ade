// Package render owns the frame buffer the apps draw into and the few fixed
// screens shared between them.
//
// A Canvas is an RGBA image sized to the panel. Apps pick one of the
// panel's palette pens (or an arbitrary HSV colour) and draw rectangles,
// lines, bitmap text and decoded photos. The hardware driver dithers the
// finished canvas down to the panel palette; the simulator shows it as is.
//
// Text uses the 7x13 bitmap face from golang.org/x/image, enlarged by whole
// multiples. Titles pulled from the network are folded to ASCII first.
//
// DecodeJPEG accepts only baseline JPEGs no larger than the panel. Progressive files,
// oversized images and malformed data fail with ErrProgressive, ErrTooLarge
// and ErrMalformed respectively.
package render
