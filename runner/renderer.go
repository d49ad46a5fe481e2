package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Renderer produces a static document ready for browser navigation. The
// harness only depends on this contract, never on how rendering happens.
type Renderer interface {
	Render(ctx context.Context) (documentPath string, err error)
}

// FileRenderer is the trivial Renderer: the document already exists on disk.
type FileRenderer string

// Render verifies the document exists and returns its path.
func (f FileRenderer) Render(ctx context.Context) (string, error) {
	if _, err := os.Stat(string(f)); err != nil {
		return "", fmt.Errorf("runner: document %s: %w", string(f), err)
	}
	return string(f), nil
}

// CommandRenderer shells out to an external rendering step. The command must
// print the produced document path as the last line of stdout. Rendering
// failures are deterministic, so they are propagated, never retried.
type CommandRenderer struct {
	Command string
	Args    []string
}

// Render runs the command and parses the document path from its output.
func (c *CommandRenderer) Render(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, c.Command, c.Args...).Output()
	if err != nil {
		return "", fmt.Errorf("runner: render command %q: %w", c.Command, err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	path := strings.TrimSpace(lines[len(lines)-1])
	if path == "" {
		return "", fmt.Errorf("runner: render command %q produced no document path", c.Command)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("runner: rendered document %s: %w", path, err)
	}
	return path, nil
}
