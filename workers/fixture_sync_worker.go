package workers

import (
	"context"
	"time"

	"football-analysis/services"
	"football-analysis/utils"

	"github.com/rs/zerolog"
)

// FixtureSyncer is the part of the match service the worker drives.
type FixtureSyncer interface {
	SyncFixtures(ctx context.Context) (services.SyncResult, error)
}

// FixtureSyncWorker pulls fixtures from the external source on a fixed interval. It runs apart
// from request handling so that scoring and ranking never wait on the provider.
type FixtureSyncWorker struct {
	syncer   FixtureSyncer
	interval time.Duration
	log      zerolog.Logger
	done     chan struct{}
}

func NewFixtureSyncWorker(syncer FixtureSyncer, interval time.Duration) *FixtureSyncWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &FixtureSyncWorker{
		syncer:   syncer,
		interval: interval,
		log:      utils.Component("fixture-sync"),
		done:     make(chan struct{}),
	}
}

func (w *FixtureSyncWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("starting fixture sync worker")
	go w.run(ctx)
}

// Done is closed once the worker has stopped.
func (w *FixtureSyncWorker) Done() <-chan struct{} {
	return w.done
}

func (w *FixtureSyncWorker) run(ctx context.Context) {
	defer close(w.done)

	// initial sync so a fresh catalog is usable right away
	w.syncOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.syncOnce(ctx)
		case <-ctx.Done():
			w.log.Info().Msg("fixture sync worker stopped")
			return
		}
	}
}

func (w *FixtureSyncWorker) syncOnce(ctx context.Context) {
	res, err := w.syncer.SyncFixtures(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Error().Err(err).Msg("fixture sync failed")
		return
	}
	w.log.Debug().Str("source", res.Source).Int("created", res.Created).Int("updated", res.Updated).
		Int("total", res.Total).Msg("fixture sync batch done")
}
