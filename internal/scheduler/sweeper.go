package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// LeaseKey is the Redis key that serializes sweeps across replicas.
const LeaseKey = "repairdesk:sweep:overdue"

const defaultLeaseTTL = 10 * time.Minute

// cronParser supports standard 5-field cron and descriptors like "@every 1h".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// SweepRunner runs one overdue sweep. services.JobWorkflowService satisfies it.
type SweepRunner interface {
	RunOverdueSweep(ctx context.Context) bool
}

// Option configures an OverdueSweeper.
type Option func(*OverdueSweeper)

// WithLocker makes each tick take a lease first. Without one every tick sweeps.
func WithLocker(l Locker) Option {
	return func(s *OverdueSweeper) { s.locker = l }
}

// WithLeaseTTL sets how long a lease is held at most.
func WithLeaseTTL(d time.Duration) Option {
	return func(s *OverdueSweeper) {
		if d > 0 {
			s.leaseTTL = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *OverdueSweeper) { s.logger = l }
}

// OverdueSweeper runs the overdue reminder sweep on a cron schedule.
type OverdueSweeper struct {
	runner   SweepRunner
	schedule cronlib.Schedule
	spec     string
	locker   Locker
	leaseTTL time.Duration
	logger   *slog.Logger

	cron *cronlib.Cron
}

// NewOverdueSweeper parses spec and prepares the sweeper. Call Start to run it.
func NewOverdueSweeper(runner SweepRunner, spec string, opts ...Option) (*OverdueSweeper, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	s := &OverdueSweeper{
		runner:   runner,
		schedule: schedule,
		spec:     spec,
		leaseTTL: defaultLeaseTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start schedules the sweep in the background.
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.cron = cronlib.New(cronlib.WithParser(cronParser))
	s.cron.Schedule(s.schedule, cronlib.FuncJob(func() {
		s.RunOnce(context.WithoutCancel(ctx))
	}))
	s.cron.Start()
	s.logger.Info("overdue sweeper started",
		slog.String("schedule", s.spec),
		slog.Bool("lease", s.locker != nil),
	)
	return nil
}

// Stop prevents new sweeps and waits for a running one, bounded by ctx.
func (s *OverdueSweeper) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("overdue sweeper stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running sweep: %w", ctx.Err())
	}
}

// RunOnce performs a single sweep if the lease can be taken. It reports
// whether a sweep ran and succeeded.
func (s *OverdueSweeper) RunOnce(ctx context.Context) bool {
	if s.locker == nil {
		return s.sweep(ctx)
	}

	token, ok, err := s.locker.Acquire(ctx, LeaseKey, s.leaseTTL)
	if err != nil {
		s.logger.Warn("sweep lease error", slog.Any("error", err))
		return false
	}
	if !ok {
		s.logger.Info("sweep skipped: another instance holds the lease")
		return false
	}
	defer func() {
		if err := s.locker.Release(ctx, LeaseKey, token); err != nil {
			s.logger.Warn("sweep lease release failed", slog.Any("error", err))
		}
	}()
	return s.sweep(ctx)
}

func (s *OverdueSweeper) sweep(ctx context.Context) bool {
	start := time.Now()
	ok := s.runner.RunOverdueSweep(ctx)
	if !ok {
		s.logger.Error("overdue sweep failed", slog.Duration("elapsed", time.Since(start)))
		return false
	}
	s.logger.Info("overdue sweep completed", slog.Duration("elapsed", time.Since(start)))
	return true
}
