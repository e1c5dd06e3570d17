package reporter

import (
	"context"
	"log/slog"
	"time"
)

type ExpiredSessionStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweeper deletes expired session rows on a fixed period so the
// sessions table does not grow without bound. Verification never trusts an
// expired row, so the sweep is purely housekeeping and its failures are
// non-fatal.
type SessionSweeper struct {
	every time.Duration
	store ExpiredSessionStore
	log   *slog.Logger
}

func NewSessionSweeper(every time.Duration, store ExpiredSessionStore, log *slog.Logger) *SessionSweeper {
	return &SessionSweeper{every: every, store: store, log: log}
}

// Run blocks until ctx is cancelled, sweeping once per period.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session sweeper stopping")
			return

		case <-ticker.C:
			n, err := s.store.DeleteExpired(ctx, time.Now().UTC())

			if err != nil {
				s.log.Warn("session sweep failed", "err", err)
				continue
			}

			if n > 0 {
				s.log.Info("swept expired sessions", "count", n)
			}
		}
	}
}
