package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Parser accepts standard five-field expressions, an optional seconds field
// and descriptors such as "@hourly" or "@every 30m".
var Parser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// Sweeper periodically removes stale files from a set of directories.
type Sweeper struct {
	cron     *cron.Cron
	schedule string
	dirs     []string
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	started bool
}

func NewSweeper(schedule string, maxAge time.Duration, logger *slog.Logger, dirs ...string) (*Sweeper, error) {
	if schedule == "" {
		return nil, errors.New("storage: cleanup schedule cannot be empty")
	}
	if maxAge <= 0 {
		return nil, errors.New("storage: retention must be positive")
	}
	if _, err := Parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("storage: invalid cleanup schedule: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cron:     cron.New(cron.WithParser(Parser)),
		schedule: schedule,
		dirs:     dirs,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// RunOnce sweeps every directory immediately.
func (s *Sweeper) RunOnce() int {
	total := 0
	for _, dir := range s.dirs {
		n, err := Sweep(dir, s.maxAge, s.now())
		if err != nil {
			s.logger.Warn("cleanup incomplete", "dir", dir, "error", err)
		}
		if n > 0 {
			s.logger.Info("removed stale files", "dir", dir, "count", n)
		}
		total += n
	}
	return total
}

// Start schedules the sweep and stops it when ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("storage: sweeper already started")
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("storage: schedule cleanup: %w", err)
	}
	s.cron.Start()
	s.started = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	done := s.cron.Stop()
	s.started = false
	s.mu.Unlock()

	<-done.Done()
}
