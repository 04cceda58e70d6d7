package storage

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
)

type memStore struct {
	mu    sync.Mutex
	saved [][]booking.Appointment
	calls chan struct{}
}

func newMemStore() *memStore {
	return &memStore{calls: make(chan struct{}, 16)}
}

func (m *memStore) Save(_ context.Context, appts []booking.Appointment) error {
	m.mu.Lock()
	m.saved = append(m.saved, appts)
	m.mu.Unlock()
	select {
	case m.calls <- struct{}{}:
	default:
	}
	return nil
}

func (m *memStore) Load(context.Context) ([]booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil, nil
	}
	return m.saved[len(m.saved)-1], nil
}

func TestAutoSaverMarkDirtyTriggersSave(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := booking.NewLedger()
	store := newMemStore()

	if _, err := ledger.Book(booking.Draft{
		ClientName:      "Sarah Johnson",
		ServiceID:       "svc-blowout",
		Start:           time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	saver := NewAutoSaver(store, ledger, logger, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		saver.Run(ctx)
		close(done)
	}()

	saver.MarkDirty()
	select {
	case <-store.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("MarkDirty did not trigger a save")
	}

	appts, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment in the snapshot, got %d", len(appts))
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}

	// Shutdown performs one final save.
	store.mu.Lock()
	total := len(store.saved)
	store.mu.Unlock()
	if total < 2 {
		t.Fatalf("expected a final save on shutdown, got %d saves", total)
	}
}

func TestAutoSaverNilSafe(t *testing.T) {
	var saver *AutoSaver
	saver.MarkDirty() // must not panic
}

func TestAutoSaverCoalescesDirtySignals(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	saver := NewAutoSaver(newMemStore(), booking.NewLedger(), logger, time.Hour)

	// Without a running loop the buffered signal caps at one pending save.
	for i := 0; i < 10; i++ {
		saver.MarkDirty()
	}
	if len(saver.dirty) != 1 {
		t.Fatalf("expected 1 pending signal, got %d", len(saver.dirty))
	}
}
