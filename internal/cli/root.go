// Package cli provides the command-line interface for postcraft.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/postcraft/internal/analysis"
	"github.com/raphaelgruber/postcraft/internal/config"
	"github.com/raphaelgruber/postcraft/internal/corpus"
	"github.com/raphaelgruber/postcraft/internal/llm"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string

	// Global config, loaded before every command
	cfg        config.Config
	logCleanup func() error

	// newGenerator is swapped in tests.
	newGenerator = func(ctx context.Context) (llm.Generator, error) {
		return llm.New(ctx, cfg.Generator, cfg.Paths.Cache)
	}
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "postcraft",
	Short: "Turn post analytics into style guides and new drafts",
	Long: `Postcraft converts exported post analytics and notes into a JSON corpus,
analyses it for writing style and engagement, and drafts new posts through
an external generation tool.

Typical workflow:
  postcraft convert                 # spreadsheets -> JSON records
  postcraft analyze style           # write the style guide
  postcraft analyze performance     # what works, and when
  postcraft generate --manual --topic "..." --goal "..."`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(config.Path(configPath), configPath != "")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		stderrLevel := slog.LevelWarn
		if verbose {
			stderrLevel = slog.LevelDebug
			cfg.LogLevel = slog.LevelDebug
		}
		var logger *slog.Logger
		logger, logCleanup = config.SetupLogger(cfg.Logging.File, cfg.LogLevel, stderrLevel)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
			logCleanup = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./postcraft.yaml or $POSTCRAFT_CONFIG)")

	// Add subcommands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(usageCmd)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when it is not a terminal.
func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

// loadStyleGuide reads the saved style guide; a missing guide is not an error.
func loadStyleGuide() (string, error) {
	data, err := os.ReadFile(cfg.Paths.StyleGuide)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("no style guide found, run 'postcraft analyze style' first", "path", cfg.Paths.StyleGuide)
			return "", nil
		}
		return "", fmt.Errorf("read style guide: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// loadInsights computes prompt insights from the corpus. Too little data yields nil.
func loadInsights() (*analysis.Insights, error) {
	records, err := corpus.LoadRecords(cfg.Paths.Examples)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	in, err := analysis.ComputeInsights(records, cfg.Analysis.InsightMinSamples)
	if err != nil {
		var insufficient *analysis.InsufficientSample
		if errors.As(err, &insufficient) {
			slog.Debug("skipping performance insights", "reason", err)
			return nil, nil
		}
		return nil, err
	}
	return in, nil
}
