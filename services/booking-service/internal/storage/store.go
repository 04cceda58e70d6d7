package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
)

// SnapshotStore persists the ledger's full appointment collection as one
// serialized snapshot. The ledger stays authoritative in memory; stores only
// need to hand back the latest snapshot at startup.
type SnapshotStore interface {
	Save(ctx context.Context, appts []booking.Appointment) error
	Load(ctx context.Context) ([]booking.Appointment, error)
}

// AutoSaver snapshots the ledger after mutations (signalled via MarkDirty)
// and on a timer, so a crash loses at most the last few seconds of changes.
type AutoSaver struct {
	store    SnapshotStore
	ledger   *booking.Ledger
	logger   *slog.Logger
	interval time.Duration
	dirty    chan struct{}
}

func NewAutoSaver(store SnapshotStore, ledger *booking.Ledger, logger *slog.Logger, interval time.Duration) *AutoSaver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AutoSaver{
		store:    store,
		ledger:   ledger,
		logger:   logger,
		interval: interval,
		dirty:    make(chan struct{}, 1),
	}
}

// MarkDirty requests a save. Never blocks; coalesces with a pending request.
func (s *AutoSaver) MarkDirty() {
	if s == nil {
		return
	}
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *AutoSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final save with a fresh context; the run context is already done.
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.save(saveCtx)
			cancel()
			return
		case <-s.dirty:
			s.save(ctx)
		case <-ticker.C:
			s.save(ctx)
		}
	}
}

func (s *AutoSaver) save(ctx context.Context) {
	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		s.logger.Error("ledger snapshot save failed", "err", err)
	}
}
