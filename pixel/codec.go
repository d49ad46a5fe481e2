package pixel

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Decode parses PNG bytes into a Buffer. Non-NRGBA source images are
// converted pixel by pixel so the layout invariant always holds.
func Decode(data []byte) (*Buffer, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pixel: decode png: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if n, ok := img.(*image.NRGBA); ok && n.Stride == w*Channels {
		buf := &Buffer{Width: w, Height: h, Pix: n.Pix}
		return buf, nil
	}

	buf := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			o := buf.At(x, y)
			buf.Pix[o+0] = byte(r >> 8)
			buf.Pix[o+1] = byte(g >> 8)
			buf.Pix[o+2] = byte(b >> 8)
			buf.Pix[o+3] = byte(a >> 8)
		}
	}
	return buf, nil
}

// Encode serialises a Buffer as PNG bytes.
func Encode(b *Buffer) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	img := &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * Channels,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("pixel: encode png: %w", err)
	}
	return out.Bytes(), nil
}
