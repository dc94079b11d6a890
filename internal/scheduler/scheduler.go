// Package scheduler runs generation jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raphaelgruber/postcraft/internal/analysis"
)

// FallbackSpec is Tuesday 09:00, used when no posting insight is available.
const FallbackSpec = "0 9 * * 2"

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler manages periodic tasks.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	timeout time.Duration
}

// New creates a scheduler in the given timezone (empty for local time).
// Each run is bounded by timeout; zero means no limit.
func New(timezone string, timeout time.Duration) (*Scheduler, error) {
	loc := time.Local
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
		}
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		jobs:    make(map[string]cron.EntryID),
		timeout: timeout,
	}, nil
}

// SpecFromInsights builds a weekly schedule at the best posting hour and day.
func SpecFromInsights(in *analysis.Insights) string {
	if in == nil || !in.HasBestHour || !in.HasBestDay {
		return FallbackSpec
	}
	return fmt.Sprintf("0 %d * * %d", in.BestHour, int(in.BestDay))
}

// ValidateSpec checks a standard five-field cron expression.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// AddJob adds a job with a cron schedule, e.g. "0 9 * * 2" (Tuesdays at 09:00).
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	entryID, err := s.cron.AddFunc(spec, func() {
		if err := s.run(name, job); err != nil {
			slog.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	slog.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) error {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	slog.Info("job started", "job", name)
	start := time.Now()
	if err := job(ctx); err != nil {
		return err
	}
	slog.Info("job completed", "job", name, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// RemoveJob removes a scheduled job.
func (s *Scheduler) RemoveJob(name string) {
	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		slog.Info("job removed", "job", name)
	}
}

// RunNow executes a job immediately with the scheduler's timeout.
func (s *Scheduler) RunNow(name string, job Job) error {
	return s.run(name, job)
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	slog.Info("scheduler started", "jobs", len(s.jobs))
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	slog.Info("scheduler stopping")
	return s.cron.Stop()
}

// JobInfo contains information about a scheduled job.
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}

// ListJobs returns the scheduled jobs sorted by name. NextRun is zero until Start.
func (s *Scheduler) ListJobs() []JobInfo {
	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entryID := range s.jobs {
		entry := s.cron.Entry(entryID)
		infos = append(infos, JobInfo{Name: name, NextRun: entry.Next, LastRun: entry.Prev})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// NextRun returns when spec next fires after from.
func NextRun(spec string, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched.Next(from), nil
}
