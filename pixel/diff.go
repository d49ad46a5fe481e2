package pixel

import "fmt"

// Diff highlight palette: unchanged pixels are dimmed to grayscale so the
// red markers stay readable in the artifact.
const (
	diffR = 0xff
	diffG = 0x00
	diffB = 0x00
)

// Diff compares a and b pixel by pixel and paints a highlight image into out.
// It returns the exact number of differing pixels. Any channel difference
// counts — there is no perceptual tolerance and no anti-aliasing heuristic.
//
// All three buffers must share the same dimensions; callers gate on that
// before invoking Diff.
func Diff(a, b, out *Buffer) (int, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("pixel: diff requires equal dimensions, got %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if out.Width != a.Width || out.Height != a.Height {
		return 0, fmt.Errorf("pixel: diff output is %dx%d, want %dx%d",
			out.Width, out.Height, a.Width, a.Height)
	}

	count := 0
	for o := 0; o < len(a.Pix); o += Channels {
		same := a.Pix[o] == b.Pix[o] &&
			a.Pix[o+1] == b.Pix[o+1] &&
			a.Pix[o+2] == b.Pix[o+2] &&
			a.Pix[o+3] == b.Pix[o+3]

		if same {
			// Dimmed grayscale of the golden pixel for context.
			gray := byte((uint32(a.Pix[o]) + uint32(a.Pix[o+1]) + uint32(a.Pix[o+2])) / 3 / 3)
			out.Pix[o+0] = gray
			out.Pix[o+1] = gray
			out.Pix[o+2] = gray
			out.Pix[o+3] = 0xff
			continue
		}

		count++
		out.Pix[o+0] = diffR
		out.Pix[o+1] = diffG
		out.Pix[o+2] = diffB
		out.Pix[o+3] = 0xff
	}
	return count, nil
}
