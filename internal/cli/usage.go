package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/postcraft/internal/llm"
	"github.com/raphaelgruber/postcraft/internal/metrics"
)

var (
	usageSince    string
	usageDetailed bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show generation usage statistics",
	Long: `Summarize the generation calls recorded in the exchange log
(enable with generator.log_exchanges or POSTCRAFT_LOG_EXCHANGES=true).

Examples:
  postcraft usage
  postcraft usage --since 7d
  postcraft usage --since 12h --detailed`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usageSince, "since", "24h", "time period (e.g., '24h', '7d', '30d')")
	usageCmd.Flags().BoolVar(&usageDetailed, "detailed", false, "show detailed breakdown")
}

// parseSince resolves a period such as "24h", "7d" or any Go duration.
func parseSince(period string, now time.Time) (time.Time, error) {
	if days, ok := strings.CutSuffix(period, "d"); ok {
		var n int
		if _, err := fmt.Sscanf(days, "%d", &n); err == nil && n > 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}
	d, err := time.ParseDuration(period)
	if err != nil || d <= 0 {
		return time.Time{}, fmt.Errorf("invalid duration: %s", period)
	}
	return now.Add(-d), nil
}

func runUsage(cmd *cobra.Command, args []string) error {
	since, err := parseSince(usageSince, time.Now())
	if err != nil {
		return err
	}

	exchanges, err := llm.ReadExchanges(cfg.Paths.Cache)
	if err != nil {
		return fmt.Errorf("read exchange log: %w", err)
	}

	collector := metrics.NewCollector()
	for _, ex := range exchanges {
		if ex.StartedAt.Before(since) {
			continue
		}
		collector.Record(metrics.Call{
			Operation:     ex.Provider,
			At:            ex.StartedAt,
			Duration:      time.Duration(ex.DurationMS) * time.Millisecond,
			PromptChars:   int64(len(ex.Prompt)),
			ResponseChars: int64(len(ex.Response)),
			Failed:        ex.Error != "",
		})
	}

	printUsage(cmd.OutOrStdout(), collector.Snapshot(), usageSince, usageDetailed)
	return nil
}

func printUsage(out io.Writer, snap metrics.Snapshot, period string, detailed bool) {
	fmt.Fprintf(out, "Generation Usage (since %s)\n", period)
	fmt.Fprintf(out, "═══════════════════════════════════════\n\n")

	total := snap.Total()
	if total == 0 {
		fmt.Fprintln(out, "No generation calls recorded.")
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("Enable generator.log_exchanges to record calls."))
		return
	}

	var failures, promptChars, responseChars int64
	for _, op := range snap.Operations {
		failures += op.Failures
		promptChars += op.TotalPromptChars
		responseChars += op.TotalResponseChars
	}
	fmt.Fprintf(out, "Calls: %d (%d failed)\n", total, failures)
	fmt.Fprintf(out, "Prompt chars: %d, response chars: %d\n", promptChars, responseChars)
	fmt.Fprintf(out, "First: %s, last: %s\n",
		snap.From.Local().Format("2006-01-02 15:04"), snap.To.Local().Format("2006-01-02 15:04"))

	fmt.Fprintf(out, "\nBy Provider:\n")
	for _, op := range snap.Operations {
		pct := float64(op.Count) / float64(total) * 100
		fmt.Fprintf(out, "  %-25s %6d (%5.1f%%)\n", op.Name, op.Count, pct)
		if detailed {
			printOpStats(out, op)
		}
	}
}

// printOpStats displays timing and size statistics for a provider.
func printOpStats(out io.Writer, op metrics.OperationSnapshot) {
	fmt.Fprintf(out, "    Time: avg %.1fms, min %dms, max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	fmt.Fprintf(out, "    Prompt: avg %.0f chars, min %d, max %d\n", op.AvgPromptChars, op.MinPromptChars, op.MaxPromptChars)
	fmt.Fprintf(out, "    Response: avg %.0f chars\n", op.AvgResponseChars)
	if op.Failures > 0 {
		fmt.Fprintf(out, "    Failures: %d\n", op.Failures)
	}
}
