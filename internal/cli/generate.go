package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/postcraft/internal/analysis"
	"github.com/raphaelgruber/postcraft/internal/contexts"
	"github.com/raphaelgruber/postcraft/internal/drafts"
	"github.com/raphaelgruber/postcraft/internal/models"
	"github.com/raphaelgruber/postcraft/internal/prompt"
)

var (
	generateManual        bool
	generateContext       string
	generateTopic         string
	generateGoal          string
	generateVariants      int
	generateSeed          uint64
	generateInspirations  int
	generateUpdateContext bool
	generateAngle         string
	generateDryRun        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a new post with the generation tool",
	Long: `Compose a prompt from the style guide, performance insights, inspiration
notes and either a topic/goal (manual mode) or a stored context, then send it
to the generation tool and save the result as a draft.

Use --variants to draft several A/B variants, each with a different writing
approach. --dry-run prints the prompts instead of generating.

Examples:
  postcraft generate --manual --topic "Code review" --goal "Start a discussion"
  postcraft generate --context leadership
  postcraft generate --context leadership --update-context --angle "Hiring seniors"
  postcraft generate --manual --topic "AI tools" --goal "Share lessons" --variants 3
  postcraft generate --context leadership --dry-run --seed 42`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateManual, "manual", false, "manual mode: provide --topic and --goal")
	generateCmd.Flags().StringVar(&generateContext, "context", "", "context mode: name of a stored context")
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "post topic (manual mode)")
	generateCmd.Flags().StringVarP(&generateGoal, "goal", "g", "", "post goal (manual mode)")
	generateCmd.Flags().IntVarP(&generateVariants, "variants", "n", 1, fmt.Sprintf("number of A/B variants (1-%d)", prompt.MaxVariants))
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "inspiration sampling seed (default random)")
	generateCmd.Flags().IntVar(&generateInspirations, "inspirations", 0, "inspiration notes to include (default 2-3)")
	generateCmd.Flags().BoolVar(&generateUpdateContext, "update-context", false, "record --angle as covered in the context")
	generateCmd.Flags().StringVar(&generateAngle, "angle", "", "summary of the angle this post covers")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the prompts without generating")

	generateCmd.MarkFlagsMutuallyExclusive("manual", "context")
	generateCmd.MarkFlagsOneRequired("manual", "context")
}

// generateRequest is everything one generation run needs.
type generateRequest struct {
	mode         models.GenerationMode
	topic        string
	goal         string
	contextName  string
	variants     int
	seed         uint64
	inspirations int
	dryRun       bool
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req := generateRequest{
		topic:        generateTopic,
		goal:         generateGoal,
		contextName:  generateContext,
		variants:     generateVariants,
		seed:         generateSeed,
		inspirations: generateInspirations,
		dryRun:       generateDryRun,
	}
	if !cmd.Flags().Changed("seed") {
		req.seed = prompt.RandomSeed()
	}

	if generateManual {
		req.mode = models.ModeManual
		if generateTopic == "" || generateGoal == "" {
			return fmt.Errorf("--manual mode requires both --topic and --goal")
		}
	} else {
		req.mode = models.ModeContext
	}
	if generateUpdateContext {
		if req.mode != models.ModeContext {
			return fmt.Errorf("--update-context requires --context")
		}
		if generateAngle == "" {
			return fmt.Errorf("--update-context requires --angle")
		}
	}

	out := cmd.OutOrStdout()
	saved, err := generateDrafts(cmd.Context(), out, req)
	if err != nil {
		return err
	}

	if generateUpdateContext && !req.dryRun && len(saved) > 0 {
		updated, err := contexts.NewStore(cfg.Paths.Contexts).Cover(req.contextName, time.Now(), generateAngle)
		if err != nil {
			return fmt.Errorf("update context: %w", err)
		}
		fmt.Fprintln(out, defaultTheme.completedStyle().Render(
			fmt.Sprintf("✓ Context %s updated (%d covered angles)", updated.Name, len(updated.CoveredAngles))))
	}
	return nil
}

// generateDrafts composes one prompt per variant, generates and saves each draft.
func generateDrafts(ctx context.Context, out io.Writer, req generateRequest) ([]*models.Draft, error) {
	variants, err := prompt.SelectVariants(req.variants)
	if err != nil {
		return nil, err
	}

	base := prompt.Request{Mode: req.mode, Topic: req.topic, Goal: req.goal}
	meta := models.Draft{Mode: req.mode, Topic: req.topic, Goal: req.goal}
	if req.mode == models.ModeContext {
		c, err := contexts.NewStore(cfg.Paths.Contexts).Load(req.contextName)
		if err != nil {
			if errors.Is(err, contexts.ErrNotFound) {
				return nil, fmt.Errorf("%w (see 'postcraft context list')", err)
			}
			return nil, err
		}
		base.Context = c
		meta.Context = c.Name
		meta.Topic = c.Topic
	}

	styleGuide, err := loadStyleGuide()
	if err != nil {
		return nil, err
	}
	insights, err := loadInsights()
	if err != nil {
		return nil, err
	}
	pool, err := prompt.LoadInspirationPool(cfg.Paths.Inspiration)
	if err != nil {
		return nil, err
	}
	base.Insights = insights
	base.Inspirations = prompt.SampleInspirations(pool, req.inspirations, req.seed)
	printGenerateContext(out, insights, base.Inspirations)

	composer := prompt.NewComposer(styleGuide, prompt.Defaults{
		TargetAudience: cfg.Defaults.TargetAudience,
		Tone:           cfg.Defaults.ToneGuidance,
		MaxLength:      cfg.Defaults.MaxLength,
	})

	prompts := make([]string, len(variants))
	for i, v := range variants {
		r := base
		r.Variant = v
		if prompts[i], err = composer.Compose(r); err != nil {
			return nil, err
		}
	}

	if req.dryRun {
		for i, p := range prompts {
			fmt.Fprintln(out, defaultTheme.headingStyle().Render(fmt.Sprintf("=== Prompt %d: %s ===", i+1, variantName(variants[i]))))
			fmt.Fprintln(out, p)
			fmt.Fprintln(out)
		}
		return nil, nil
	}

	gen, err := newGenerator(ctx)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	store := drafts.NewStore(cfg.Paths.Output)

	saved := make([]*models.Draft, 0, len(variants))
	for i, v := range variants {
		if len(variants) > 1 {
			fmt.Fprintln(out, defaultTheme.headingStyle().Render(fmt.Sprintf("Variant %d: %s", i+1, variantName(v))))
		}
		fmt.Fprintln(out, defaultTheme.statusStyle().Render("Generating post..."))

		text, err := gen.Generate(ctx, prompts[i])
		if err != nil {
			return saved, fmt.Errorf("generate: %w", err)
		}

		m := meta
		if v != nil {
			m.Variant = v.Name
		}
		d, err := store.Save(m, text)
		if err != nil {
			return saved, err
		}
		saved = append(saved, d)

		fmt.Fprintln(out, defaultTheme.completedStyle().Render("✓ Draft saved to "+d.Path))
		fmt.Fprintf(out, "  %s\n", analysis.Preview(d.Body, 100))
	}
	return saved, nil
}

func variantName(v *prompt.Variant) string {
	if v == nil {
		return "Standard"
	}
	return v.Name
}

func printGenerateContext(out io.Writer, in *analysis.Insights, notes []prompt.Inspiration) {
	if in != nil {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("Using performance insights from your past posts"))
		if in.HasBestHour {
			fmt.Fprintf(out, "  Best posting time: %s\n", in.BestTime())
		}
		if in.HasBestDay {
			fmt.Fprintf(out, "  Best posting day: %s\n", in.BestDay)
		}
	}
	if len(notes) > 0 {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render(fmt.Sprintf("Using %d inspiration notes:", len(notes))))
		for _, n := range notes {
			fmt.Fprintf(out, "  - %s: %s\n", n.File, analysis.Preview(n.Content, 60))
		}
	}
}
