package golden

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/snapgold/pixel"
)

// ErrNotFound is returned by Load when the golden file does not exist. It is
// a setup problem (the golden was never approved), not a regression, and
// callers surface it with a distinct message.
var ErrNotFound = errors.New("golden: reference image not found")

// DiffFilename is the fixed name of the diff artifact inside the output dir.
const DiffFilename = "diff.png"

// Load reads and decodes the golden PNG at path.
func Load(path string) (*pixel.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("golden: read %s: %w", path, err)
	}
	buf, err := pixel.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("golden: %s: %w", path, err)
	}
	return buf, nil
}

// Save encodes buf and overwrites the golden at path whole-file. Parent
// directories are created as needed.
func Save(path string, buf *pixel.Buffer) error {
	data, err := pixel.Encode(buf)
	if err != nil {
		return fmt.Errorf("golden: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("golden: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("golden: write %s: %w", path, err)
	}
	return nil
}

// WriteDiff persists the diff artifact under outDir and returns its path.
func WriteDiff(outDir string, diff *pixel.Buffer) (string, error) {
	data, err := pixel.Encode(diff)
	if err != nil {
		return "", fmt.Errorf("golden: encode diff: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("golden: mkdir %s: %w", outDir, err)
	}
	path := filepath.Join(outDir, DiffFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("golden: write diff %s: %w", path, err)
	}
	return path, nil
}
