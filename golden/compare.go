// Package golden owns the reference-image side of the harness: loading and
// overwriting golden PNGs, comparing a candidate capture against them, and
// persisting the diff artifact on mismatch.
package golden

import (
	"fmt"

	"github.com/hazyhaar/snapgold/pixel"
)

// Kind classifies a comparison result.
type Kind int

const (
	// Match — every pixel identical.
	Match Kind = iota
	// PixelMismatch — same dimensions, one or more differing pixels.
	PixelMismatch
	// DimensionMismatch — widths or heights differ; pixels were never compared.
	DimensionMismatch
)

func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case PixelMismatch:
		return "pixel_mismatch"
	case DimensionMismatch:
		return "dimension_mismatch"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Outcome is the result of one comparison. DiffCount, DiffPercent and Diff
// are set only for PixelMismatch; the dimension fields only for
// DimensionMismatch.
type Outcome struct {
	Kind        Kind
	DiffCount   int
	DiffPercent float64
	Diff        *pixel.Buffer

	WantWidth  int
	WantHeight int
	GotWidth   int
	GotHeight  int
}

// Compare judges candidate against golden. Unequal dimensions short-circuit
// to DimensionMismatch without touching the pixel diff. Any nonzero
// differing-pixel count is a mismatch — the percentage is a diagnostic,
// never a gate.
func Compare(golden, candidate *pixel.Buffer) (Outcome, error) {
	if golden.Width != candidate.Width || golden.Height != candidate.Height {
		return Outcome{
			Kind:       DimensionMismatch,
			WantWidth:  golden.Width,
			WantHeight: golden.Height,
			GotWidth:   candidate.Width,
			GotHeight:  candidate.Height,
		}, nil
	}

	diff := pixel.NewBuffer(golden.Width, golden.Height)
	count, err := pixel.Diff(golden, candidate, diff)
	if err != nil {
		return Outcome{}, fmt.Errorf("golden: compare: %w", err)
	}

	if count == 0 {
		return Outcome{Kind: Match}, nil
	}

	total := golden.Width * golden.Height
	return Outcome{
		Kind:        PixelMismatch,
		DiffCount:   count,
		DiffPercent: float64(count) / float64(total) * 100,
		Diff:        diff,
	}, nil
}
