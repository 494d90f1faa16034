package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"bqdigital/housekeeper/pkg/tasks"
)

// Scheduler runs registry tasks on their cron schedules.
type Scheduler struct {
	runner *Runner
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	ids     map[string]cron.EntryID
	ctx     context.Context
	stop    chan struct{}
	running bool
}

// New creates a scheduler driving runner.
func New(runner *Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger: logger}

	return &Scheduler{
		runner: runner,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ids:    make(map[string]cron.EntryID),
		ctx:    context.Background(),
	}
}

// Start schedules every unpaused task that has a schedule and starts the
// cron loop. Cancelling ctx stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.ctx = ctx
	if err := s.scheduleLocked(); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true
	s.stop = make(chan struct{})
	s.logger.Info("scheduler started", "scheduled_tasks", len(s.ids))

	go func(stop <-chan struct{}) {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}(s.stop)

	return nil
}

// scheduleLocked replaces all cron entries with the registry's current
// schedules. s.mu must be held.
func (s *Scheduler) scheduleLocked() error {
	entries := s.runner.Registry().Entries()

	specs := make(map[string]cron.Schedule, len(entries))
	for _, e := range entries {
		if e.Schedule == "" || e.Paused {
			continue
		}
		sched, err := cron.ParseStandard(e.Schedule)
		if err != nil {
			return fmt.Errorf("invalid cron schedule %q for task %q: %w", e.Schedule, e.Name, err)
		}
		specs[e.Name] = sched
	}

	for name, id := range s.ids {
		s.cron.Remove(id)
		delete(s.ids, name)
	}
	for name, sched := range specs {
		s.ids[name] = s.cron.Schedule(sched, s.job(name))
		s.logger.Debug("task scheduled", "task", name)
	}
	return nil
}

func (s *Scheduler) job(name string) cron.Job {
	return cron.FuncJob(func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()

		// Single-flight failures are already logged and counted by the runner.
		_, _ = s.runner.Run(ctx, name, nil, TriggerSchedule)
	})
}

// Reload swaps the task set and reschedules. Runs in flight finish with
// their old definition.
func (s *Scheduler) Reload(entries []*tasks.Entry) error {
	for _, e := range entries {
		if e.Schedule == "" {
			continue
		}
		if _, err := cron.ParseStandard(e.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q for task %q: %w", e.Schedule, e.Name, err)
		}
	}
	if err := s.runner.Registry().Replace(entries); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.scheduleLocked(); err != nil {
		return err
	}
	s.logger.Info("scheduler reloaded", "tasks", len(entries), "scheduled_tasks", len(s.ids))
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether the cron loop is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Scheduled returns the names of tasks with a cron entry, sorted.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.ids))
	for name := range s.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextRun returns the next scheduled run of a task, or nil when the task
// is not scheduled or the scheduler has not started.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	id, ok := s.ids[name]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	next := s.cron.Entry(id).Next
	if next.IsZero() {
		return nil
	}
	return &next
}
