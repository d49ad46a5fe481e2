// Package pixel holds the raw-pixel data model shared by the capture and
// comparison stages: a fixed-layout RGBA buffer, a lossless PNG codec, and
// the per-pixel diff primitive.
package pixel

import "fmt"

// Channels is the number of bytes per pixel. All buffers are RGBA.
const Channels = 4

// Buffer is a decoded raster image: row-major RGBA bytes.
// Treat it as immutable once produced — the comparator and the codec both
// assume the backing slice never changes under them.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewBuffer allocates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*Channels),
	}
}

// Validate checks the length invariant len(Pix) == Width*Height*Channels.
func (b *Buffer) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("pixel: negative dimensions %dx%d", b.Width, b.Height)
	}
	if want := b.Width * b.Height * Channels; len(b.Pix) != want {
		return fmt.Errorf("pixel: buffer length %d, want %d for %dx%d",
			len(b.Pix), want, b.Width, b.Height)
	}
	return nil
}

// At returns the byte offset of pixel (x, y). No bounds check.
func (b *Buffer) At(x, y int) int {
	return (y*b.Width + x) * Channels
}
