package pixel

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solid(t *testing.T, w, h int, c color.NRGBA) *Buffer {
	t.Helper()
	b := NewBuffer(w, h)
	for o := 0; o < len(b.Pix); o += Channels {
		b.Pix[o+0] = c.R
		b.Pix[o+1] = c.G
		b.Pix[o+2] = c.B
		b.Pix[o+3] = c.A
	}
	return b
}

var red = color.NRGBA{R: 255, A: 255}

func TestValidate(t *testing.T) {
	b := NewBuffer(10, 10)
	if err := b.Validate(); err != nil {
		t.Fatalf("fresh buffer invalid: %v", err)
	}

	b.Pix = b.Pix[:len(b.Pix)-1]
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for truncated buffer")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := solid(t, 10, 7, red)
	// Poke a few distinct pixels so the round trip is not trivially uniform.
	src.Pix[src.At(3, 2)+1] = 128
	src.Pix[src.At(9, 6)+2] = 200

	data, err := Encode(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 10 || got.Height != 7 {
		t.Fatalf("got %dx%d, want 10x7", got.Width, got.Height)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Fatal("pixel data changed across encode/decode")
	}
}

func TestDecodeNonNRGBA(t *testing.T) {
	// Paletted source exercises the generic conversion path.
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{B: 255, A: 255},
	})
	img.SetColorIndex(2, 2, 1)

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		t.Fatal(err)
	}
	buf, err := Decode(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if err := buf.Validate(); err != nil {
		t.Fatal(err)
	}
	o := buf.At(2, 2)
	if buf.Pix[o+2] != 255 {
		t.Fatalf("expected blue at (2,2), got %v", buf.Pix[o:o+4])
	}
}

func TestDiffIdentical(t *testing.T) {
	a := solid(t, 10, 10, red)
	b := solid(t, 10, 10, red)
	out := NewBuffer(10, 10)

	count, err := Diff(a, b, out)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("identical buffers, got count %d", count)
	}
}

func TestDiffSinglePixel(t *testing.T) {
	a := solid(t, 10, 10, red)
	b := solid(t, 10, 10, red)
	o := b.At(4, 5)
	b.Pix[o+0] = 0
	b.Pix[o+2] = 255 // one blue pixel

	out := NewBuffer(10, 10)
	count, err := Diff(a, b, out)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
	if out.Pix[o+0] != diffR || out.Pix[o+1] != diffG || out.Pix[o+2] != diffB {
		t.Fatalf("differing pixel not highlighted: %v", out.Pix[o:o+4])
	}
	// A matching neighbour must not be highlighted.
	n := out.At(0, 0)
	if out.Pix[n+0] == diffR && out.Pix[n+1] == diffG && out.Pix[n+2] == diffB {
		t.Fatal("matching pixel painted as diff")
	}
}

func TestDiffRejectsUnequalDimensions(t *testing.T) {
	a := solid(t, 10, 10, red)
	b := solid(t, 10, 5, red)
	out := NewBuffer(10, 10)

	if _, err := Diff(a, b, out); err == nil {
		t.Fatal("expected error for unequal dimensions")
	}
}

func TestDiffAlphaOnlyChangeCounts(t *testing.T) {
	a := solid(t, 3, 3, red)
	b := solid(t, 3, 3, red)
	b.Pix[b.At(1, 1)+3] = 128

	out := NewBuffer(3, 3)
	count, err := Diff(a, b, out)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("alpha change must count, got %d", count)
	}
}
