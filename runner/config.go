package runner

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the immutable per-run configuration. Resolve it once with Load
// before constructing a Runner; nothing mutates it afterwards.
type Config struct {
	// GoldenPath is the reference image file. Read in verify mode,
	// overwritten whole-file in approve mode.
	GoldenPath string `yaml:"golden_path" envconfig:"GOLDEN_PATH"`

	// Approve replaces the golden with the capture instead of comparing.
	Approve bool `yaml:"-" ignored:"true"`

	// ViewportWidth is the fixed capture width. Default: 1024.
	ViewportWidth int `yaml:"viewport_width" envconfig:"VIEWPORT_WIDTH"`

	// OutputDir receives the diff artifact on mismatch. Default: "outputs".
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`

	// ChromePath is the browser executable. Empty = CHROME_PATH env, then
	// PATH probe, then the launcher default.
	ChromePath string `yaml:"chrome_path" envconfig:"CHROME_PATH"`

	// TestTarget identifies the invoking test target; used only to phrase
	// the approval hint in failure messages.
	TestTarget string `yaml:"-" envconfig:"TEST_TARGET"`

	// NavTimeout / CaptureTimeout bound the browser stages. Defaults: 30s.
	NavTimeout     time.Duration `yaml:"nav_timeout" envconfig:"NAV_TIMEOUT"`
	CaptureTimeout time.Duration `yaml:"capture_timeout" envconfig:"CAPTURE_TIMEOUT"`

	// ServeHTTP serves the rendered document over a loopback HTTP server
	// instead of a file:// URI. For Chrome builds that restrict local files.
	ServeHTTP bool `yaml:"serve_http" envconfig:"SERVE_HTTP"`

	// Stealth applies anti-detection patches to the capture page. Only
	// relevant for live-URL captures.
	Stealth bool `yaml:"stealth" envconfig:"STEALTH"`

	// HistoryDB is an optional SQLite file recording one row per run.
	HistoryDB string `yaml:"history_db" envconfig:"HISTORY_DB"`
}

func (c *Config) defaults() {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1024
	}
	if c.OutputDir == "" {
		c.OutputDir = "outputs"
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.CaptureTimeout <= 0 {
		c.CaptureTimeout = 30 * time.Second
	}
}

// Load resolves configuration in precedence order: built-in defaults, then
// the optional YAML file, then SNAPGOLD_* environment variables, then the
// conventional test-runner variables (TEST_UNDECLARED_OUTPUTS_DIR,
// TEST_TARGET) as fallbacks for values still unset.
func Load(file string) (Config, error) {
	var cfg Config

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return cfg, fmt.Errorf("runner: read config %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("runner: parse config %s: %w", file, err)
		}
	}

	if err := envconfig.Process("snapgold", &cfg); err != nil {
		return cfg, fmt.Errorf("runner: environment: %w", err)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv("TEST_UNDECLARED_OUTPUTS_DIR")
	}
	if cfg.TestTarget == "" {
		cfg.TestTarget = os.Getenv("TEST_TARGET")
	}

	cfg.defaults()
	return cfg, nil
}

// ApproveCommand is the exact command a user runs to accept the current
// candidate as the new golden. Shown in every mismatch message.
func (c *Config) ApproveCommand() string {
	if c.TestTarget != "" {
		return fmt.Sprintf("bazel run %s -- --approve", c.TestTarget)
	}
	return fmt.Sprintf("snapgold run %s --approve", c.GoldenPath)
}
