package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vibechat-service/internal/observability"
)

// Purger deletes expired rows and reports how many went away.
type Purger interface {
	PurgeExpired(ctx context.Context) int
}

// Sweeper drops in-memory state that expired before now.
type Sweeper func(now time.Time) int

// PurgeWorker periodically removes expired vibes and statuses and sweeps
// expired sessions and token revocations.
type PurgeWorker struct {
	interval time.Duration
	vibes    Purger
	statuses Purger
	sweepers map[string]Sweeper
	log      zerolog.Logger
	now      func() time.Time
}

type PurgeConfig struct {
	Interval time.Duration
	Vibes    Purger
	Statuses Purger
	// Sweepers are keyed by the metric label they report under.
	Sweepers map[string]Sweeper
	Log      zerolog.Logger
}

func NewPurgeWorker(cfg PurgeConfig) *PurgeWorker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &PurgeWorker{
		interval: interval,
		vibes:    cfg.Vibes,
		statuses: cfg.Statuses,
		sweepers: cfg.Sweepers,
		log:      cfg.Log.With().Str("component", "purge_worker").Logger(),
		now:      time.Now,
	}
}

// Run purges once immediately and then on every tick until ctx is done.
func (w *PurgeWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge pass.
func (w *PurgeWorker) RunOnce(ctx context.Context) {
	ctx, span := observability.Tracer().Start(ctx, "workers.purge")
	defer span.End()

	if w.vibes != nil {
		w.record("vibes", w.vibes.PurgeExpired(ctx))
	}
	if w.statuses != nil {
		w.record("statuses", w.statuses.PurgeExpired(ctx))
	}
	now := w.now()
	for kind, sweep := range w.sweepers {
		w.record(kind, sweep(now))
	}
}

func (w *PurgeWorker) record(kind string, n int) {
	if n == 0 {
		return
	}
	observability.AddPurged(kind, n)
	w.log.Info().Str("kind", kind).Int("count", n).Msg("purged expired entries")
}
