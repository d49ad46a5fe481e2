// Command snapgold renders a document, screenshots it with headless Chrome,
// and verifies the pixels against an approved golden image.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/snapgold/capture"
	"github.com/hazyhaar/snapgold/history"
	"github.com/hazyhaar/snapgold/runner"
)

var (
	flagConfig    string
	flagApprove   bool
	flagPage      string
	flagRenderCmd string
	flagWidth     int
	flagLimit     int

	exitCode int
)

var rootCmd = &cobra.Command{
	Use:           "snapgold",
	Short:         "Visual-regression harness: capture a page and compare against a golden image",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run <goldenPath>",
	Short: "Capture and verify (or, with --approve, replace) a golden",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the history database",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")

	runCmd.Flags().BoolVar(&flagApprove, "approve", false, "overwrite the golden with the current capture")
	runCmd.Flags().StringVar(&flagPage, "page", "", "pre-rendered document to capture")
	runCmd.Flags().StringVar(&flagRenderCmd, "render-cmd", "", "command whose stdout's last line is the document path")
	runCmd.Flags().IntVar(&flagWidth, "width", 0, "fixed viewport width (overrides config)")

	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "number of runs to show")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	setupLogging()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "snapgold: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func setupLogging() {
	var lvl slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := runner.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg.GoldenPath = args[0]
	cfg.Approve = flagApprove
	if flagWidth > 0 {
		cfg.ViewportWidth = flagWidth
	}

	renderer, err := buildRenderer()
	if err != nil {
		return err
	}

	session := capture.NewSession(
		capture.NewRodLauncher(capture.RodConfig{
			BinPath: cfg.ChromePath,
			Stealth: cfg.Stealth,
		}),
		capture.Config{
			ViewportWidth:  cfg.ViewportWidth,
			NavTimeout:     cfg.NavTimeout,
			CaptureTimeout: cfg.CaptureTimeout,
		},
	)

	var opts []runner.Option
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, runner.WithHistory(store))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rep := runner.New(cfg, renderer, session, opts...).Run(ctx)
	if rep.ExitCode == 0 {
		fmt.Println(rep.Message)
	} else {
		fmt.Fprintln(os.Stderr, rep.Message)
	}
	exitCode = rep.ExitCode
	return nil
}

func buildRenderer() (runner.Renderer, error) {
	switch {
	case flagPage != "" && flagRenderCmd != "":
		return nil, fmt.Errorf("--page and --render-cmd are mutually exclusive")
	case flagPage != "":
		return runner.FileRenderer(flagPage), nil
	case flagRenderCmd != "":
		parts := strings.Fields(flagRenderCmd)
		if len(parts) == 0 {
			return nil, fmt.Errorf("--render-cmd is empty")
		}
		return &runner.CommandRenderer{Command: parts[0], Args: parts[1:]}, nil
	default:
		return nil, fmt.Errorf("one of --page or --render-cmd is required")
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := runner.Load(flagConfig)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history database configured (set history_db or SNAPGOLD_HISTORY_DB)")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), flagLimit)
	if err != nil {
		return err
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-7s  %-18s  %s",
			e.StartedAt.Format("2006-01-02 15:04:05"), e.Mode, e.Outcome, e.GoldenPath)
		if e.DiffCount > 0 {
			line += fmt.Sprintf("  (%d px, %.2f%%, %s)", e.DiffCount, e.DiffPercent, e.DiffPath)
		}
		fmt.Println(line)
	}
	return nil
}
