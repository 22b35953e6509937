// Package sweeper periodically delivers reminders that are past due but still
// pending. It is the only recovery path for timers lost to a restart.
package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pathakanu/alina/internal/delivery"
	"github.com/pathakanu/alina/internal/metrics"
	"github.com/pathakanu/alina/internal/model"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DueLister reads pending reminders due at or before now.
type DueLister interface {
	DueReminders(ctx context.Context, now time.Time) ([]model.Reminder, error)
}

// Deliverer delivers one reminder and reports whether it transitioned to sent.
type Deliverer interface {
	Deliver(ctx context.Context, id uint, path delivery.Path) (bool, error)
}

// Sweeper runs a sweep every interval, plus once shortly after Start.
type Sweeper struct {
	store      DueLister
	deliverer  Deliverer
	interval   time.Duration
	firstDelay time.Duration
	logger     zerolog.Logger
	now        func() time.Time

	cron    *cron.Cron
	first   *time.Timer
	mu      sync.Mutex
	running sync.WaitGroup
	ctx     context.Context
	stop    context.CancelFunc

	// lifecycle orders running.Add against Stop's Wait.
	lifecycle sync.Mutex
	stopped   bool
}

// deliveryTimeout bounds one reminder's delivery within a sweep.
const deliveryTimeout = 30 * time.Second

// New returns a Sweeper. Runs never overlap.
func New(store DueLister, deliverer Deliverer, interval, firstDelay time.Duration, logger zerolog.Logger) *Sweeper {
	logger = logger.With().Str("component", "sweeper").Logger()
	return &Sweeper{
		store:      store,
		deliverer:  deliverer,
		interval:   interval,
		firstDelay: firstDelay,
		logger:     logger,
		now:        time.Now,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&logger))),
		),
	}
}

// Start registers the periodic job and schedules the first run.
func (s *Sweeper) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.ctx, s.stop = ctx, cancel

	if _, err := s.cron.AddJob(fmt.Sprintf("@every %s", s.interval), cron.FuncJob(s.run)); err != nil {
		cancel()
		return fmt.Errorf("sweeper: schedule: %w", err)
	}
	s.cron.Start()
	s.first = time.AfterFunc(s.firstDelay, s.run)
	s.logger.Info().Dur("interval", s.interval).Dur("first_delay", s.firstDelay).Msg("sweeper started")
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.lifecycle.Lock()
	s.stopped = true
	s.lifecycle.Unlock()

	if s.first != nil {
		s.first.Stop()
	}
	if s.stop != nil {
		s.stop()
	}
	<-s.cron.Stop().Done()
	s.running.Wait()
}

func (s *Sweeper) run() {
	s.lifecycle.Lock()
	if s.stopped || s.ctx.Err() != nil {
		s.lifecycle.Unlock()
		return
	}
	s.running.Add(1)
	s.lifecycle.Unlock()
	defer s.running.Done()
	if _, err := s.Sweep(s.ctx); err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
	}
}

// Sweep delivers every pending reminder due at the start of the run and
// returns how many were marked sent.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(started).Seconds()) }()

	due, err := s.store.DueReminders(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweeper: %w", err)
	}

	delivered := 0
	for _, reminder := range due {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		dctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		ok, err := s.deliverer.Deliver(dctx, reminder.ID, delivery.PathSweep)
		cancel()
		if err != nil {
			s.logger.Error().Err(err).Uint("reminder_id", reminder.ID).Msg("sweep delivery failed")
			continue
		}
		if ok {
			delivered++
		}
	}
	if len(due) > 0 {
		s.logger.Info().Int("due", len(due)).Int("delivered", delivered).Msg("sweep finished")
	}
	return delivered, nil
}
