package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/postcraft/internal/models"
	"github.com/raphaelgruber/postcraft/internal/prompt"
	"github.com/raphaelgruber/postcraft/internal/scheduler"
)

var (
	scheduleContexts []string
	scheduleCron     string
	scheduleVariants int
	scheduleOnce     bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate context drafts on a recurring schedule",
	Long: `Run in the foreground and draft a post for each context on a cron schedule.

Without --cron the schedule is weekly at the best posting day and hour found
in your performance data, or Tuesday 09:00 when there is too little data.
Times use defaults.schedule_timezone, else defaults.timezone when it
names a zone, else local time. Press Ctrl+C to stop.

Examples:
  postcraft schedule --context leadership
  postcraft schedule --context leadership --context tooling --cron "0 8 * * 1"
  postcraft schedule --context leadership --once`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringArrayVar(&scheduleContexts, "context", nil, "context to draft for (repeatable)")
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "five-field cron expression (default from insights)")
	scheduleCmd.Flags().IntVarP(&scheduleVariants, "variants", "n", 1, fmt.Sprintf("variants per run (1-%d)", prompt.MaxVariants))
	scheduleCmd.Flags().BoolVar(&scheduleOnce, "once", false, "run every job immediately and exit")
	_ = scheduleCmd.MarkFlagRequired("context")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if _, err := prompt.SelectVariants(scheduleVariants); err != nil {
		return err
	}

	spec := scheduleCron
	if spec == "" {
		insights, err := loadInsights()
		if err != nil {
			return err
		}
		spec = scheduler.SpecFromInsights(insights)
	}
	if err := scheduler.ValidateSpec(spec); err != nil {
		return err
	}

	sched, err := scheduler.New(cfg.Defaults.ScheduleLocation(), cfg.Generator.Timeout)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	jobFor := func(name string) scheduler.Job {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			_, err := generateDrafts(ctx, out, generateRequest{
				mode:        models.ModeContext,
				contextName: name,
				variants:    scheduleVariants,
				seed:        prompt.RandomSeed(),
			})
			return err
		}
	}

	// Fail fast on unknown contexts.
	store := contextStore()
	for _, name := range scheduleContexts {
		if _, err := store.Load(name); err != nil {
			return err
		}
	}

	if scheduleOnce {
		for _, name := range scheduleContexts {
			if err := sched.RunNow(name, jobFor(name)); err != nil {
				return fmt.Errorf("run %s: %w", name, err)
			}
		}
		return nil
	}

	for _, name := range scheduleContexts {
		if err := sched.AddJob(name, spec, jobFor(name)); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start()
	fmt.Fprintln(out, defaultTheme.completedStyle().Render(fmt.Sprintf("✓ Scheduler running (%s)", spec)))
	for _, job := range sched.ListJobs() {
		fmt.Fprintf(out, "  %-20s next run %s\n", job.Name, job.NextRun.Format("Mon 2006-01-02 15:04 MST"))
	}
	fmt.Fprintln(out, defaultTheme.hintStyle().Render("Press Ctrl+C to stop."))

	<-ctx.Done()
	fmt.Fprintln(out, defaultTheme.hintStyle().Render("\nStopping, waiting for running jobs..."))
	<-sched.Stop().Done()
	return nil
}
