package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/postcraft/internal/corpus"
)

var (
	convertDir      string
	convertOutput   string
	convertWatch    bool
	convertNoImages bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert analytics exports into JSON post records",
	Long: `Convert every .xlsx, .xlsm and .csv analytics export in the examples directory
into one JSON record per post, plus all_posts.json with every record.

Files that cannot be read, lack content or carry an unparseable date are
skipped and listed at the end; the rest of the batch still converts.

Examples:
  postcraft convert
  postcraft convert --dir ./exports --output ./examples
  postcraft convert --watch
  postcraft convert --no-images`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertDir, "dir", "d", "", "directory of exports (default paths.examples)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "directory for JSON records (default: same as --dir)")
	convertCmd.Flags().BoolVarP(&convertWatch, "watch", "w", false, "keep running and re-convert when exports change")
	convertCmd.Flags().BoolVar(&convertNoImages, "no-images", false, "do not extract embedded workbook images")
}

func runConvert(cmd *cobra.Command, args []string) error {
	dir := convertDir
	if dir == "" {
		dir = cfg.Paths.Examples
	}
	opts := corpus.Options{
		OutputDir:     convertOutput,
		ExtractImages: cfg.Convert.ExtractImages && !convertNoImages,
		Timezone:      cfg.Defaults.Timezone,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	res, err := convertOnce(ctx, out, dir, opts)
	if err := reportConvert(out, dir, res, err); err != nil {
		return err
	}

	if !convertWatch {
		return nil
	}

	fmt.Fprintln(out, defaultTheme.hintStyle().Render(fmt.Sprintf("\nWatching %s for changes. Press Ctrl+C to stop.", dir)))
	return corpus.Watch(ctx, dir, corpus.WatchOptions{
		Convert: opts,
		OnBatch: func(res *corpus.Result, err error) {
			if err := reportConvert(out, dir, res, err); err != nil {
				fmt.Fprintln(out, defaultTheme.errorStyle().Render("Error: "+err.Error()))
			}
		},
	})
}

// convertOnce runs a batch, with a progress bar when writing to a terminal.
func convertOnce(ctx context.Context, out io.Writer, dir string, opts corpus.Options) (*corpus.Result, error) {
	if isTerminal(out) && !verbose {
		return RunConvertProgress(ctx, dir, opts)
	}
	return corpus.Convert(ctx, dir, opts)
}

// reportConvert prints the batch summary. An empty input directory is reported, not failed.
func reportConvert(out io.Writer, dir string, res *corpus.Result, err error) error {
	if errors.Is(err, corpus.ErrNothingToProcess) {
		fmt.Fprintln(out, defaultTheme.warningStyle().Render("Nothing to process."))
		fmt.Fprintln(out, defaultTheme.hintStyle().Render(fmt.Sprintf("Add .xlsx or .csv exports to %s and run convert again.", dir)))
		return nil
	}
	if res != nil {
		printConvertSummary(out, res)
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("Conversion cancelled."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	return nil
}

func printConvertSummary(out io.Writer, res *corpus.Result) {
	skipped := res.Skipped()
	warnings := res.Warnings()

	fmt.Fprintln(out, defaultTheme.completedStyle().Render(fmt.Sprintf("✓ Converted %d posts", len(res.Records))))
	for _, path := range res.Written {
		fmt.Fprintf(out, "  %s\n", filepath.Base(path))
	}

	if len(skipped) > 0 {
		fmt.Fprintln(out, defaultTheme.warningStyle().Render(fmt.Sprintf("\nSkipped (%d):", len(skipped))))
		for _, issue := range skipped {
			fmt.Fprintf(out, "  • %s: %s\n", issue.File, issue.Reason())
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintln(out, defaultTheme.warningStyle().Render(fmt.Sprintf("\nWarnings (%d):", len(warnings))))
		for _, issue := range warnings {
			fmt.Fprintf(out, "  • %s: %s\n", issue.File, issue.Reason())
		}
	}
}
