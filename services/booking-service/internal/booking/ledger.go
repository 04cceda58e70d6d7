package booking

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is the authoritative in-memory appointment store. All mutations run
// as a single check-then-mutate critical section under the write lock, so two
// callers racing for the same slot cannot both commit. Reads return copies
// taken under the read lock.
type Ledger struct {
	mu    sync.RWMutex
	byID  map[string]*Appointment
	order []string // insertion order, used for deterministic iteration

	newID func() string
	now   func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		byID:  map[string]*Appointment{},
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Book validates the draft, re-runs the overlap check against the current
// ledger state and inserts the appointment. The grid a caller picked a slot
// from may be stale by commit time; this re-check is what prevents
// double-booking.
func (l *Ledger) Book(draft Draft) (Appointment, error) {
	status := draft.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return Appointment{}, fmt.Errorf("%w: %q", ErrInvalidStatus, draft.Status)
	}
	if draft.DurationMinutes <= 0 {
		return Appointment{}, ErrInvalidDuration
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if status.Blocking() {
		end := draft.Start.Add(time.Duration(draft.DurationMinutes) * time.Minute)
		if c := l.conflicting(draft.Start, end, ""); c != nil {
			return Appointment{}, &ConflictError{ConflictingID: c.ID, Start: c.Start, End: c.End()}
		}
	}

	appt := Appointment{
		ID:              l.newID(),
		ClientID:        draft.ClientID,
		ClientName:      draft.ClientName,
		ServiceID:       draft.ServiceID,
		ServiceName:     draft.ServiceName,
		Start:           draft.Start,
		DurationMinutes: draft.DurationMinutes,
		Status:          status,
		Notes:           draft.Notes,
		CreatedAt:       l.now(),
	}
	l.insert(appt)
	return appt, nil
}

// Reschedule moves an appointment to a new start and duration. The moved
// appointment is excluded from the overlap comparison set, so shifting by
// zero minutes always succeeds.
func (l *Ledger) Reschedule(id string, newStart time.Time, newDurationMinutes int) (Appointment, error) {
	if newDurationMinutes <= 0 {
		return Appointment{}, ErrInvalidDuration
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	appt, ok := l.byID[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}

	if appt.Status.Blocking() {
		end := newStart.Add(time.Duration(newDurationMinutes) * time.Minute)
		if c := l.conflicting(newStart, end, id); c != nil {
			return Appointment{}, &ConflictError{ConflictingID: c.ID, Start: c.Start, End: c.End()}
		}
	}

	appt.Start = newStart
	appt.DurationMinutes = newDurationMinutes
	return *appt, nil
}

// UpdateStatus applies any valid status value. No transition rules are
// enforced and no overlap re-check runs: a status-only change cannot create
// a conflict among already-committed intervals.
func (l *Ledger) UpdateStatus(id string, status Status) (Appointment, error) {
	if !status.Valid() {
		return Appointment{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	appt, ok := l.byID[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	appt.Status = status
	return *appt, nil
}

// Cancel marks the appointment cancelled. The record is kept; cancellation
// frees the interval for rebooking but never drops history.
func (l *Ledger) Cancel(id string) (Appointment, error) {
	return l.UpdateStatus(id, StatusCancelled)
}

// Delete removes the record permanently.
func (l *Ledger) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[id]; !ok {
		return ErrNotFound
	}
	delete(l.byID, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

func (l *Ledger) Get(id string) (Appointment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	appt, ok := l.byID[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return *appt, nil
}

// Filter narrows Query results. Zero times mean unbounded; empty status and
// client id match everything. The range applies to the appointment start.
type Filter struct {
	From     time.Time
	To       time.Time
	Status   Status
	ClientID string
}

func (f Filter) matches(a *Appointment) bool {
	if !f.From.IsZero() && a.Start.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !a.Start.Before(f.To) {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.ClientID != "" && a.ClientID != f.ClientID {
		return false
	}
	return true
}

// Query returns matching appointments sorted ascending by start, ties kept in
// insertion order. The result is a point-in-time copy.
func (l *Ledger) Query(f Filter) []Appointment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Appointment
	for _, id := range l.order {
		if a := l.byID[id]; f.matches(a) {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

// Snapshot returns every appointment in insertion order, for the persistence
// collaborator to serialize.
func (l *Ledger) Snapshot() []Appointment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Appointment, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.byID[id])
	}
	return out
}

// Restore replaces the ledger contents with a previously taken snapshot.
func (l *Ledger) Restore(appts []Appointment) error {
	byID := make(map[string]*Appointment, len(appts))
	order := make([]string, 0, len(appts))
	for _, a := range appts {
		if a.ID == "" {
			return fmt.Errorf("restore: appointment without id")
		}
		if a.DurationMinutes <= 0 {
			return fmt.Errorf("restore: appointment %s: %w", a.ID, ErrInvalidDuration)
		}
		if !a.Status.Valid() {
			return fmt.Errorf("restore: appointment %s: %w: %q", a.ID, ErrInvalidStatus, a.Status)
		}
		if _, dup := byID[a.ID]; dup {
			return fmt.Errorf("restore: duplicate appointment id %s", a.ID)
		}
		stored := a
		byID[a.ID] = &stored
		order = append(order, a.ID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID = byID
	l.order = order
	return nil
}

// conflicting returns the earliest-starting pending or confirmed appointment
// overlapping [start, end), skipping excludeID. Half-open intervals: [s1,e1)
// and [s2,e2) overlap iff s1 < e2 && s2 < e1.
func (l *Ledger) conflicting(start, end time.Time, excludeID string) *Appointment {
	var found *Appointment
	for _, id := range l.order {
		if id == excludeID {
			continue
		}
		a := l.byID[id]
		if !a.Status.Blocking() {
			continue
		}
		if start.Before(a.End()) && a.Start.Before(end) {
			if found == nil || a.Start.Before(found.Start) {
				found = a
			}
		}
	}
	return found
}

func (l *Ledger) insert(a Appointment) {
	stored := a
	l.byID[a.ID] = &stored
	l.order = append(l.order, a.ID)
}
