package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/postcraft/internal/analysis"
	"github.com/raphaelgruber/postcraft/internal/corpus"
	"github.com/raphaelgruber/postcraft/internal/prompt"
)

var (
	analyzeStyleLLM   bool
	analyzeDir        string
	analyzePerfTop    int
	analyzePerfOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the post corpus",
	Long: `Analyze the converted posts in the examples directory.

Subcommands:
  style        Derive a writing style guide from the example posts
  performance  Report engagement by day, hour, length, type and format`,
}

var analyzeStyleCmd = &cobra.Command{
	Use:   "style",
	Short: "Write the style guide from the example posts",
	Long: `Compute writing statistics over every example post (JSON records and
.txt/.md posts) and save a style guide to paths.style_guide.

With --llm the posts are also sent to the generation tool for a qualitative
analysis, which is placed above the statistics.

Examples:
  postcraft analyze style
  postcraft analyze style --llm`,
	Args: cobra.NoArgs,
	RunE: runAnalyzeStyle,
}

var analyzePerformanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Report what drives engagement",
	Long: `Analyze engagement over records with impressions: best days and hours,
post length, post type, format elements and the top posts.

Examples:
  postcraft analyze performance
  postcraft analyze performance --top 10
  postcraft analyze performance --output report.md`,
	Args: cobra.NoArgs,
	RunE: runAnalyzePerformance,
}

func init() {
	analyzeCmd.PersistentFlags().StringVarP(&analyzeDir, "dir", "d", "", "examples directory (default paths.examples)")

	analyzeStyleCmd.Flags().BoolVar(&analyzeStyleLLM, "llm", false, "add a qualitative analysis from the generation tool")

	analyzePerformanceCmd.Flags().IntVarP(&analyzePerfTop, "top", "n", 0, "number of top posts to list (default analysis.top_n)")
	analyzePerformanceCmd.Flags().StringVarP(&analyzePerfOutput, "output", "o", "", "also write the report to this file")

	analyzeCmd.AddCommand(analyzeStyleCmd)
	analyzeCmd.AddCommand(analyzePerformanceCmd)
}

func examplesDir() string {
	if analyzeDir != "" {
		return analyzeDir
	}
	return cfg.Paths.Examples
}

func runAnalyzeStyle(cmd *cobra.Command, args []string) error {
	c, err := corpus.Load(examplesDir())
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	samples := analysis.StyleSamples(c.Records, textContents(c.TextPosts))
	stats, err := analysis.AnalyzeStyle(samples, 10)
	if err != nil {
		var insufficient *analysis.InsufficientSample
		if errors.As(err, &insufficient) {
			return fmt.Errorf("no example posts in %s: run 'postcraft convert' or add .txt posts", examplesDir())
		}
		return err
	}

	guide := analysis.RenderStyleGuide(stats)
	if analyzeStyleLLM {
		qualitative, err := generateStyleAnalysis(cmd, c.Contents())
		if err != nil {
			return err
		}
		guide = qualitative + "\n\n---\n\n" + guide
	}

	if err := writeFile(cfg.Paths.StyleGuide, guide); err != nil {
		return fmt.Errorf("save style guide: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := printMarkdown(out, guide); err != nil {
		return err
	}
	fmt.Fprintln(out, defaultTheme.completedStyle().Render(fmt.Sprintf("✓ Style guide saved to %s (%d posts)", cfg.Paths.StyleGuide, stats.Posts)))
	return nil
}

func generateStyleAnalysis(cmd *cobra.Command, posts []string) (string, error) {
	text, err := prompt.StyleAnalysis(posts)
	if err != nil {
		return "", err
	}
	gen, err := newGenerator(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("init generator: %w", err)
	}

	slog.Info("requesting style analysis", "posts", len(posts), "prompt_chars", len(text))
	fmt.Fprintln(cmd.ErrOrStderr(), defaultTheme.statusStyle().Render(fmt.Sprintf("Analyzing %d posts with the generation tool...", len(posts))))
	result, err := gen.Generate(cmd.Context(), text)
	if err != nil {
		return "", fmt.Errorf("style analysis: %w", err)
	}
	return strings.TrimSpace(result), nil
}

func runAnalyzePerformance(cmd *cobra.Command, args []string) error {
	records, err := corpus.LoadRecords(examplesDir())
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	top := analyzePerfTop
	if top <= 0 {
		top = cfg.Analysis.TopN
	}

	var md string
	report, err := analysis.AnalyzePerformance(records, analysis.Options{MinSamples: cfg.Analysis.MinSamples, TopN: top})
	var insufficient *analysis.InsufficientSample
	switch {
	case errors.As(err, &insufficient):
		md = analysis.RenderInsufficient(insufficient)
	case err != nil:
		return fmt.Errorf("analyze performance: %w", err)
	default:
		md = analysis.RenderPerformance(report)
	}

	if analyzePerfOutput != "" {
		if err := writeFile(analyzePerfOutput, md); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}
	return printMarkdown(cmd.OutOrStdout(), md)
}

func textContents(posts []corpus.TextPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Content
	}
	return out
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(strings.TrimRight(content, "\n")+"\n"), 0o644)
}

// printMarkdown renders markdown with glamour on terminals and writes it verbatim otherwise.
func printMarkdown(out io.Writer, md string) error {
	if !isTerminal(out) {
		_, err := io.WriteString(out, md)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(terminalWidth(out, 80), 100)),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
