package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/postcraft/internal/contexts"
	"github.com/raphaelgruber/postcraft/internal/drafts"
	"github.com/raphaelgruber/postcraft/internal/llm"
	"github.com/raphaelgruber/postcraft/internal/models"
)

type stubGenerator struct {
	reply   string
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, nil
}

type workspace struct {
	root   string
	config string
	gen    *stubGenerator
}

func (w workspace) path(parts ...string) string {
	return filepath.Join(append([]string{w.root}, parts...)...)
}

// newWorkspace writes a config rooted at a temp dir and swaps in a stub generator.
func newWorkspace(t *testing.T) workspace {
	t.Helper()
	for _, key := range []string{
		"POSTCRAFT_CONFIG", "POSTCRAFT_PROVIDER", "POSTCRAFT_COMMAND", "POSTCRAFT_MODEL",
		"POSTCRAFT_EXAMPLES_DIR", "POSTCRAFT_OUTPUT_DIR", "POSTCRAFT_TIMEZONE", "POSTCRAFT_SCHEDULE_TIMEZONE",
		"POSTCRAFT_LOG_FILE", "POSTCRAFT_LOG_LEVEL", "POSTCRAFT_LOG_EXCHANGES", "POSTCRAFT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	root := t.TempDir()
	w := workspace{
		root:   root,
		config: filepath.Join(root, "postcraft.yaml"),
		gen:    &stubGenerator{reply: "A generated post.\n\nWhat do you think?\n\n" + models.ImageSuggestionMarker + "\nA whiteboard sketch"},
	}
	yaml := strings.Join([]string{
		"paths:",
		"  examples: " + w.path("examples"),
		"  inspiration: " + w.path("inspiration"),
		"  contexts: " + w.path("contexts"),
		"  output: " + w.path("drafts"),
		"  style_guide: " + w.path("style_guide.md"),
		"  cache: " + w.path("cache"),
		"logging:",
		`  file: ""`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(w.config, []byte(yaml), 0o644))

	orig := newGenerator
	newGenerator = func(ctx context.Context) (llm.Generator, error) { return w.gen, nil }
	t.Cleanup(func() { newGenerator = orig })
	return w
}

// resetFlags restores every flag to its default so commands can run repeatedly.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func (w workspace) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestConvertCommand(t *testing.T) {
	w := newWorkspace(t)
	writeFiles(t, w.path("examples"), map[string]string{
		"export.csv": "Post Date,2025-01-02\nImpressions,100\nContent,hello world\n",
	})

	out, err := w.run(t, "", "convert")
	require.NoError(t, err)
	assert.Contains(t, out, "Converted 1 posts")
	assert.FileExists(t, w.path("examples", "post_2025_01_02.json"))
	assert.FileExists(t, w.path("examples", "all_posts.json"))
}

func TestConvertCommand_NothingToProcess(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.MkdirAll(w.path("examples"), 0o755))

	out, err := w.run(t, "", "convert")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to process.")
}

func TestAnalyzeStyleCommand(t *testing.T) {
	w := newWorkspace(t)
	writeFiles(t, w.path("examples"), map[string]string{
		"one.txt": "Shipping beats perfect.\n\nWhat did you ship this week?",
		"two.md":  "Three lessons from code review:\n- Be kind\n- Be specific\n- Be quick #engineering",
	})

	_, err := w.run(t, "", "analyze", "style")
	require.NoError(t, err)

	guide, err := os.ReadFile(w.path("style_guide.md"))
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(guide)))
	assert.Empty(t, w.gen.prompts, "no generation without --llm")
}

func TestAnalyzeStyleCommand_LLM(t *testing.T) {
	w := newWorkspace(t)
	writeFiles(t, w.path("examples"), map[string]string{"one.txt": "Shipping beats perfect."})
	w.gen.reply = "Short punchy sentences."

	_, err := w.run(t, "", "analyze", "style", "--llm")
	require.NoError(t, err)

	require.Len(t, w.gen.prompts, 1)
	assert.Contains(t, w.gen.prompts[0], "Shipping beats perfect.")
	guide, err := os.ReadFile(w.path("style_guide.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(guide), "Short punchy sentences.\n\n---\n\n"))
}

func TestAnalyzePerformanceCommand_Insufficient(t *testing.T) {
	w := newWorkspace(t)
	writeFiles(t, w.path("examples"), map[string]string{"note.txt": "not a record"})
	report := w.path("report.md")

	out, err := w.run(t, "", "analyze", "performance", "--output", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Insufficient data: 0 posts with impressions, need at least 5")
	assert.FileExists(t, report)
}

func TestContextCommands(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run(t, "", "context", "create", "leadership")
	require.NoError(t, err)
	assert.Contains(t, out, "Created context template")

	_, err = w.run(t, "", "context", "create", "leadership")
	assert.ErrorIs(t, err, contexts.ErrExists)

	_, err = w.run(t, "", "context", "cover", "leadership", "--angle", "Theme 1 deep dive")
	require.NoError(t, err)

	out, err = w.run(t, "", "context", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "leadership")
	assert.Contains(t, out, "(1 covered)")

	out, err = w.run(t, "", "context", "show", "leadership")
	require.NoError(t, err)
	assert.Contains(t, out, "[✓] Theme 1")
	assert.Contains(t, out, "[ ] Theme 2")
	assert.Contains(t, out, "Covered angles (1):")

	out, err = w.run(t, "", "context", "show", "leadership", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "covered_angles:")

	_, err = w.run(t, "", "context", "show", "missing")
	assert.ErrorIs(t, err, contexts.ErrNotFound)
}

func TestContextDelete_Confirmation(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run(t, "", "context", "create", "ai")
	require.NoError(t, err)

	out, err := w.run(t, "n\n", "context", "delete", "ai")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.FileExists(t, w.path("contexts", "ai.yaml"))

	out, err = w.run(t, "y\n", "context", "delete", "ai")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted: ai")
	assert.NoFileExists(t, w.path("contexts", "ai.yaml"))
}

func TestGenerateCommand_Manual(t *testing.T) {
	w := newWorkspace(t)
	writeFiles(t, w.path("inspiration"), map[string]string{
		"a.md":      "Idea about pairing",
		"b.md":      "Idea about on-call",
		"README.md": "not an idea",
	})

	out, err := w.run(t, "", "generate", "--manual", "--topic", "Code review", "--goal", "Start a discussion", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Draft saved to")

	require.Len(t, w.gen.prompts, 1)
	p := w.gen.prompts[0]
	assert.Contains(t, p, "Code review")
	assert.Contains(t, p, "Start a discussion")
	assert.Contains(t, p, "Idea about pairing")
	assert.NotContains(t, p, "not an idea")

	list, err := drafts.NewStore(w.path("drafts")).List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ModeManual, list[0].Mode)
	assert.Equal(t, "Code review", list[0].Topic)
	assert.Equal(t, "A generated post.\n\nWhat do you think?", list[0].Body)
	assert.Equal(t, "A whiteboard sketch", list[0].ImageSuggestion)

	out, err = w.run(t, "", "drafts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Code review")

	out, err = w.run(t, "", "drafts", "show", filepath.Base(list[0].Path))
	require.NoError(t, err)
	assert.Contains(t, out, "# Code review")
	assert.Contains(t, out, "**Image suggestion:** A whiteboard sketch")
}

func TestGenerateCommand_Variants(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.run(t, "", "generate", "--manual", "-t", "Testing", "-g", "Teach", "--variants", "3")
	require.NoError(t, err)
	require.Len(t, w.gen.prompts, 3)
	assert.Contains(t, w.gen.prompts[0], "VARIANT STYLE")

	list, err := drafts.NewStore(w.path("drafts")).List()
	require.NoError(t, err)
	assert.Len(t, list, 3)
	variants := map[string]bool{}
	for _, d := range list {
		variants[d.Variant] = true
	}
	assert.Len(t, variants, 3)
}

func TestGenerateCommand_ContextDryRun(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run(t, "", "context", "create", "leadership")
	require.NoError(t, err)

	out, err := w.run(t, "", "generate", "--context", "leadership", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "BROADER TOPIC CONTEXT")
	assert.Contains(t, out, "Your main topic here")
	assert.Empty(t, w.gen.prompts)

	_, err = os.Stat(w.path("drafts"))
	assert.True(t, os.IsNotExist(err), "dry run writes no drafts")
}

func TestGenerateCommand_UpdateContext(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run(t, "", "context", "create", "leadership")
	require.NoError(t, err)

	_, err = w.run(t, "", "generate", "--context", "leadership", "--update-context", "--angle", "Theme 2 story")
	require.NoError(t, err)

	c, err := contexts.NewStore(w.path("contexts")).Load("leadership")
	require.NoError(t, err)
	require.Len(t, c.CoveredAngles, 1)
	assert.True(t, strings.HasSuffix(c.CoveredAngles[0], ": Theme 2 story"))

	list, err := drafts.NewStore(w.path("drafts")).List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "leadership", list[0].Context)
}

func TestGenerateCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no mode", []string{"generate"}, "at least one of the flags"},
		{"both modes", []string{"generate", "--manual", "--context", "x"}, "none of the others can be"},
		{"manual without goal", []string{"generate", "--manual", "--topic", "x"}, "requires both --topic and --goal"},
		{"update without context", []string{"generate", "--manual", "-t", "x", "-g", "y", "--update-context"}, "--update-context requires --context"},
		{"update without angle", []string{"generate", "--context", "x", "--update-context"}, "--update-context requires --angle"},
		{"unknown context", []string{"generate", "--context", "missing"}, "context not found"},
		{"too many variants", []string{"generate", "--manual", "-t", "x", "-g", "y", "--variants", "6"}, "variants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkspace(t)
			_, err := w.run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, w.gen.prompts)
		})
	}
}

func TestScheduleCommand_Once(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run(t, "", "context", "create", "leadership")
	require.NoError(t, err)

	_, err = w.run(t, "", "schedule", "--context", "leadership", "--once")
	require.NoError(t, err)
	assert.Len(t, w.gen.prompts, 1)

	_, err = w.run(t, "", "schedule", "--context", "leadership", "--cron", "not a cron", "--once")
	assert.ErrorContains(t, err, "invalid schedule")

	_, err = w.run(t, "", "schedule", "--context", "missing", "--once")
	assert.ErrorIs(t, err, contexts.ErrNotFound)
}

func TestUsageCommand(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run(t, "", "usage")
	require.NoError(t, err)
	assert.Contains(t, out, "No generation calls recorded.")

	logged := llm.NewExchangeLog(&stubGenerator{reply: "hello"}, w.path("cache"), "stub:test")
	for range 2 {
		_, err := logged.Generate(context.Background(), "prompt")
		require.NoError(t, err)
	}

	out, err = w.run(t, "", "usage", "--since", "1h", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Calls: 2 (0 failed)")
	assert.Contains(t, out, "stub:test")
	assert.Contains(t, out, "Prompt: avg 6 chars")
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"24h", now.Add(-24 * time.Hour), false},
		{"7d", now.AddDate(0, 0, -7), false},
		{"30d", now.AddDate(0, 0, -30), false},
		{"90m", now.Add(-90 * time.Minute), false},
		{"0d", time.Time{}, true},
		{"soon", time.Time{}, true},
		{"-1h", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSince(tt.in, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
