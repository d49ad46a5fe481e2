package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ViewportWidth != 1024 {
		t.Fatalf("viewport width %d", cfg.ViewportWidth)
	}
	if cfg.NavTimeout != 30*time.Second || cfg.CaptureTimeout != 30*time.Second {
		t.Fatalf("timeouts %v / %v", cfg.NavTimeout, cfg.CaptureTimeout)
	}
	if cfg.OutputDir == "" {
		t.Fatal("output dir empty")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapgold.yaml")
	doc := `
golden_path: goldens/home.png
viewport_width: 800
serve_http: true
nav_timeout: 5s
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GoldenPath != "goldens/home.png" {
		t.Fatalf("golden path %q", cfg.GoldenPath)
	}
	if cfg.ViewportWidth != 800 {
		t.Fatalf("viewport width %d", cfg.ViewportWidth)
	}
	if !cfg.ServeHTTP {
		t.Fatal("serve_http not set")
	}
	if cfg.NavTimeout != 5*time.Second {
		t.Fatalf("nav timeout %v", cfg.NavTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapgold.yaml")
	if err := os.WriteFile(path, []byte("viewport_width: 800\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SNAPGOLD_VIEWPORT_WIDTH", "640")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ViewportWidth != 640 {
		t.Fatalf("env did not win: %d", cfg.ViewportWidth)
	}
}

func TestLoad_TestRunnerFallbacks(t *testing.T) {
	t.Setenv("TEST_UNDECLARED_OUTPUTS_DIR", "/bazel/outputs")
	t.Setenv("TEST_TARGET", "//ui/page:screenshot_test")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "/bazel/outputs" {
		t.Fatalf("output dir %q", cfg.OutputDir)
	}
	if cfg.TestTarget != "//ui/page:screenshot_test" {
		t.Fatalf("test target %q", cfg.TestTarget)
	}
}

func TestApproveCommand(t *testing.T) {
	c := Config{GoldenPath: "goldens/home.png"}
	if got := c.ApproveCommand(); got != "snapgold run goldens/home.png --approve" {
		t.Fatalf("got %q", got)
	}

	c.TestTarget = "//ui/page:screenshot_test"
	if got := c.ApproveCommand(); got != "bazel run //ui/page:screenshot_test -- --approve" {
		t.Fatalf("got %q", got)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
