package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCleanupSchedule runs expired-session cleanup every 15 minutes.
const DefaultCleanupSchedule = "*/15 * * * *"

var cleanupCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

func parseCleanupSchedule(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		clean = DefaultCleanupSchedule
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("devserver: cleanup schedule must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := cleanupCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("devserver: invalid cleanup schedule: %w", err)
	}
	return schedule, nil
}

// SessionCleanerConfig configures the background expired-session cleaner.
type SessionCleanerConfig struct {
	Store    Store
	Schedule string
	Now      func() time.Time
	Logger   *slog.Logger
}

// SessionCleaner drops expired sessions on a UTC cron schedule.
type SessionCleaner struct {
	store    Store
	schedule cron.Schedule
	now      func() time.Time
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionCleaner creates a session cleaner instance.
func NewSessionCleaner(cfg SessionCleanerConfig) (*SessionCleaner, error) {
	if cfg.Store == nil {
		return nil, errors.New("devserver: session cleaner store is nil")
	}
	schedule, err := parseCleanupSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &SessionCleaner{
		store:    cfg.Store,
		schedule: schedule,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}, nil
}

// Start launches the background cleanup loop. Calling Start on a running
// cleaner is a no-op.
func (c *SessionCleaner) Start() {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		for {
			next := c.schedule.Next(c.now().UTC())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-loopCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				c.RunOnce(loopCtx)
			}
		}
	}()
}

// Stop halts the cleanup loop and waits for the in-flight pass, if any.
func (c *SessionCleaner) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce executes a single cleanup pass.
func (c *SessionCleaner) RunOnce(ctx context.Context) {
	dropped, err := c.store.CleanExpiredSessions(ctx)
	if err != nil {
		c.logger.Error("session cleanup failed", "error", err)
		return
	}
	if dropped > 0 {
		c.logger.Info("expired sessions removed", "count", dropped)
	}
}
