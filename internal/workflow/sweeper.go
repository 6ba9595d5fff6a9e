package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/quillsign/quillsign/internal/store"
)

// Sweeper periodically expires documents whose deadline has passed. The engine
// itself never consults the clock for expiry, so this is the scheduler that
// turns an expiresAt timestamp into an actual status transition.
type Sweeper struct {
	store    *store.Store
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(documentStore *store.Store, engine *Engine, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    documentStore,
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on every tick until ctx is cancelled. A zero or negative interval
// disables the sweeper and Run returns immediately.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep expires every non-terminal document past its deadline. Documents that
// changed between the list and the expiry are skipped on this pass and picked
// up on the next one.
func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now()

	for _, doc := range s.store.List() {
		if doc.ExpiresAt == nil || doc.ExpiresAt.After(now) || doc.Status.IsTerminal() {
			continue
		}

		expired, err := s.engine.Expire(ctx, doc)
		if err != nil {
			// raced with a concurrent transition, retry next tick
			s.logger.Debug("expiry skipped",
				slog.String("document_id", doc.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := s.store.Replace(expired); err != nil {
			s.logger.Warn("failed to persist expiry",
				slog.String("document_id", doc.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.logger.Info("document expired",
			slog.String("document_id", doc.ID),
			slog.Time("expires_at", *doc.ExpiresAt),
		)
	}
}
