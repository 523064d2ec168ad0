// Package scheduler runs the service's background maintenance jobs on a cron
// schedule. Today that is a single job: purging idempotency records whose TTL
// has passed so the table does not grow without bound.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/policy-tracker-backend/internal/repo"
)

var sweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "idempotency_records_swept_total",
	Help: "Expired idempotency records removed by the sweeper.",
})

func init() {
	prometheus.MustRegister(sweptTotal)
}

// Options configures a Scheduler.
type Options struct {
	// IdempotencySweep is a cron spec ("@every 1h", "0 3 * * *").
	// Empty disables the sweeper.
	IdempotencySweep string
	// Timeout bounds one sweep. Zero means 30s.
	Timeout time.Duration
	// Location evaluates cron specs. Nil means UTC.
	Location *time.Location
}

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
	opts Options
	log  zerolog.Logger

	// Now is the sweeper's clock.
	Now func() time.Time
}

// New builds a Scheduler. Jobs are registered by Start.
func New(db *gorm.DB, opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	cronLog := logger.With().Str("component", "cron").Logger()
	pl := cron.PrintfLogger(&cronLog)
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(pl),
		cron.WithChain(cron.Recover(pl), cron.SkipIfStillRunning(pl)),
	)
	return &Scheduler{
		cron: c,
		db:   db,
		opts: opts,
		log:  logger,
		Now:  func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.opts.IdempotencySweep != "" {
		if _, err := s.cron.AddFunc(s.opts.IdempotencySweep, s.sweepJob); err != nil {
			return err
		}
		s.log.Info().Str("schedule", s.opts.IdempotencySweep).Msg("scheduled idempotency sweep")
	}
	s.cron.Start()
	return nil
}

// Stop stops the runner. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// in-flight jobs to complete.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	<-s.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// SweepIdempotency deletes every idempotency record that has expired.
func (s *Scheduler) SweepIdempotency(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, errors.New("scheduler: no database")
	}
	n, err := repo.DeleteExpiredIdempotency(ctx, s.db, s.Now())
	if err != nil {
		return 0, err
	}
	sweptTotal.Add(float64(n))
	return n, nil
}

func (s *Scheduler) sweepJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	start := time.Now()
	n, err := s.SweepIdempotency(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("idempotency sweep failed")
		return
	}
	s.log.Info().
		Int64("deleted", n).
		Dur("took", time.Since(start)).
		Msg("idempotency sweep done")
}
