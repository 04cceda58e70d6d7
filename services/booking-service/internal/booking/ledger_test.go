package booking

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestLedger() *Ledger {
	l := NewLedger()
	var n int
	l.newID = func() string {
		n++
		return fmt.Sprintf("appt-%d", n)
	}
	l.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return l
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestBook_Defaults(t *testing.T) {
	l := newTestLedger()

	appt, err := l.Book(Draft{ClientName: "Sarah Johnson", ServiceName: "Blowout", Start: at(9, 0), DurationMinutes: 45})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if appt.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if appt.Status != StatusPending {
		t.Fatalf("expected default status pending, got %s", appt.Status)
	}
	if appt.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
	if !appt.End().Equal(at(9, 45)) {
		t.Fatalf("expected end 09:45, got %s", appt.End())
	}
	if l.Len() != 1 {
		t.Fatalf("expected ledger size 1, got %d", l.Len())
	}
}

func TestBook_InvalidInput(t *testing.T) {
	l := newTestLedger()

	if _, err := l.Book(Draft{Start: at(9, 0), DurationMinutes: 0}); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := l.Book(Draft{Start: at(9, 0), DurationMinutes: 30, Status: "booked"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("failed bookings must not change the ledger, size %d", l.Len())
	}
}

func TestBook_ConflictNamesExisting(t *testing.T) {
	l := newTestLedger()

	first, err := l.Book(Draft{Start: at(10, 0), DurationMinutes: 60, Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	_, err = l.Book(Draft{Start: at(10, 30), DurationMinutes: 30})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ConflictingID != first.ID {
		t.Fatalf("conflict should name %s, got %s", first.ID, conflict.ConflictingID)
	}
	if l.Len() != 1 {
		t.Fatalf("failed booking must leave the ledger unchanged, size %d", l.Len())
	}
}

func TestBook_AdjacentIntervalsDoNotConflict(t *testing.T) {
	l := newTestLedger()

	if _, err := l.Book(Draft{Start: at(10, 0), DurationMinutes: 60}); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	// Half-open intervals: [10:00,11:00) and [11:00,11:30) touch but do not overlap.
	if _, err := l.Book(Draft{Start: at(11, 0), DurationMinutes: 30}); err != nil {
		t.Fatalf("adjacent booking should succeed: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 appointments, got %d", l.Len())
	}
}

func TestBook_CancelledAndNoShowDoNotBlock(t *testing.T) {
	l := newTestLedger()

	appt, err := l.Book(Draft{Start: at(10, 0), DurationMinutes: 60})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if _, err := l.Cancel(appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := l.Book(Draft{Start: at(10, 0), DurationMinutes: 60}); err != nil {
		t.Fatalf("rebooking a cancelled interval should succeed: %v", err)
	}

	noShow, err := l.Book(Draft{Start: at(14, 0), DurationMinutes: 30})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if _, err := l.UpdateStatus(noShow.ID, StatusNoShow); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if _, err := l.Book(Draft{Start: at(14, 0), DurationMinutes: 30}); err != nil {
		t.Fatalf("no_show must not block rebooking: %v", err)
	}
}

func TestReschedule(t *testing.T) {
	l := newTestLedger()

	a, err := l.Book(Draft{Start: at(10, 0), DurationMinutes: 60, Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	b, err := l.Book(Draft{Start: at(12, 0), DurationMinutes: 30, Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	// Shifting by zero minutes overlaps only itself and must succeed.
	if _, err := l.Reschedule(a.ID, a.Start, a.DurationMinutes); err != nil {
		t.Fatalf("self-overlapping reschedule should succeed: %v", err)
	}

	// Moving b onto a conflicts.
	_, err = l.Reschedule(b.ID, at(10, 30), 30)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ConflictingID != a.ID {
		t.Fatalf("conflict should name %s, got %s", a.ID, conflict.ConflictingID)
	}
	got, err := l.Get(b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Start.Equal(at(12, 0)) || got.DurationMinutes != 30 {
		t.Fatal("failed reschedule must not mutate the appointment")
	}

	// A clean move applies in place.
	moved, err := l.Reschedule(b.ID, at(15, 0), 45)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if !moved.Start.Equal(at(15, 0)) || moved.DurationMinutes != 45 {
		t.Fatalf("unexpected rescheduled appointment: %+v", moved)
	}

	if _, err := l.Reschedule("missing", at(9, 0), 30); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := l.Reschedule(b.ID, at(9, 0), 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestUpdateStatus_TransitionsUnrestricted(t *testing.T) {
	l := newTestLedger()

	appt, err := l.Book(Draft{Start: at(10, 0), DurationMinutes: 30})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	// The ledger imposes no state machine; even completed -> pending is allowed.
	for _, status := range []Status{StatusConfirmed, StatusCompleted, StatusPending, StatusNoShow, StatusCancelled} {
		got, err := l.UpdateStatus(appt.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s) failed: %v", status, err)
		}
		if got.Status != status {
			t.Fatalf("expected status %s, got %s", status, got.Status)
		}
	}

	if _, err := l.UpdateStatus(appt.ID, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := l.UpdateStatus("missing", StatusConfirmed); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelKeepsHistory_DeleteRemoves(t *testing.T) {
	l := newTestLedger()

	a, _ := l.Book(Draft{Start: at(10, 0), DurationMinutes: 30})
	b, _ := l.Book(Draft{Start: at(11, 0), DurationMinutes: 30})

	if _, err := l.Cancel(a.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	cancelled := l.Query(Filter{Status: StatusCancelled})
	if len(cancelled) != 1 || cancelled[0].ID != a.ID {
		t.Fatalf("cancelled appointment should still be queryable, got %d results", len(cancelled))
	}

	if err := l.Delete(b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := l.Get(b.ID); !IsNotFound(err) {
		t.Fatalf("deleted appointment should be gone, got %v", err)
	}
	for _, got := range l.Query(Filter{}) {
		if got.ID == b.ID {
			t.Fatal("deleted appointment still returned by Query")
		}
	}
	if err := l.Delete(b.ID); !IsNotFound(err) {
		t.Fatalf("double delete should report ErrNotFound, got %v", err)
	}
}

func TestQuery_FilterAndOrdering(t *testing.T) {
	l := newTestLedger()

	late, _ := l.Book(Draft{ClientID: "c1", Start: at(15, 0), DurationMinutes: 30})
	early, _ := l.Book(Draft{ClientID: "c2", Start: at(9, 0), DurationMinutes: 30})
	mid, _ := l.Book(Draft{ClientID: "c1", Start: at(12, 0), DurationMinutes: 30})
	otherDay, _ := l.Book(Draft{ClientID: "c1", Start: at(12, 0).AddDate(0, 0, 1), DurationMinutes: 30})

	all := l.Query(Filter{})
	if len(all) != 4 {
		t.Fatalf("expected 4 appointments, got %d", len(all))
	}
	wantOrder := []string{early.ID, mid.ID, late.ID, otherDay.ID}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	day := l.Query(Filter{From: at(0, 0), To: at(0, 0).AddDate(0, 0, 1)})
	if len(day) != 3 {
		t.Fatalf("expected 3 appointments on the day, got %d", len(day))
	}

	byClient := l.Query(Filter{ClientID: "c1"})
	if len(byClient) != 3 {
		t.Fatalf("expected 3 appointments for c1, got %d", len(byClient))
	}
}

func TestNoOverlapInvariant(t *testing.T) {
	l := newTestLedger()

	for i := 0; i < 8; i++ {
		if _, err := l.Book(Draft{Start: at(9, i*45), DurationMinutes: 45, Status: StatusConfirmed}); err != nil {
			t.Fatalf("Book %d failed: %v", i, err)
		}
	}
	appts := l.Query(Filter{})
	if _, err := l.Reschedule(appts[0].ID, appts[0].Start.Add(-30*time.Minute), 45); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	blocking := func(a Appointment) bool { return a.Status.Blocking() }
	appts = l.Query(Filter{})
	for i := range appts {
		for j := range appts {
			if i == j || !blocking(appts[i]) || !blocking(appts[j]) {
				continue
			}
			if appts[i].Start.Before(appts[j].End()) && appts[j].Start.Before(appts[i].End()) {
				t.Fatalf("appointments %s and %s overlap", appts[i].ID, appts[j].ID)
			}
		}
	}
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	l := NewLedger()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Book(Draft{Start: at(10, 0), DurationMinutes: 60, Status: StatusConfirmed})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !IsConflict(err) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("exactly one concurrent booking should win, got %d", succeeded)
	}
	if l.Len() != 1 {
		t.Fatalf("expected ledger size 1, got %d", l.Len())
	}
}

func TestSnapshotRestore(t *testing.T) {
	l := newTestLedger()

	l.Book(Draft{ClientName: "Emma Williams", ServiceName: "Balayage", Start: at(11, 30), DurationMinutes: 180, Status: StatusConfirmed})
	l.Book(Draft{ClientName: "Olivia Brown", ServiceName: "Blowout", Start: at(9, 0), DurationMinutes: 45, Notes: "first visit"})

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 snapshot entries, got %d", len(snap))
	}

	restored := NewLedger()
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got := restored.Snapshot()
	for i := range snap {
		if got[i] != snap[i] {
			t.Fatalf("snapshot entry %d changed across restore:\nwant %+v\ngot  %+v", i, snap[i], got[i])
		}
	}

	// The restored ledger keeps enforcing the overlap invariant.
	if _, err := restored.Book(Draft{Start: at(12, 0), DurationMinutes: 30}); !IsConflict(err) {
		t.Fatalf("expected conflict against restored appointment, got %v", err)
	}

	if err := restored.Restore([]Appointment{{ID: "x", DurationMinutes: 0, Status: StatusPending}}); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if err := restored.Restore([]Appointment{
		{ID: "x", Start: at(9, 0), DurationMinutes: 30, Status: StatusPending},
		{ID: "x", Start: at(10, 0), DurationMinutes: 30, Status: StatusPending},
	}); err == nil {
		t.Fatal("expected duplicate id error")
	}
}
