package booking

import "time"

// Status is the lifecycle state of an appointment. Transitions are not
// restricted; only pending and confirmed appointments occupy their interval.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Blocking reports whether an appointment in this status holds its time slot.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment is a single salon booking. ClientID and ServiceID reference
// collections owned by the catalog; the names are denormalized for display.
type Appointment struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	ClientName      string    `json:"client_name"`
	ServiceID       string    `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Draft is the caller-supplied input to Book. Status defaults to pending.
type Draft struct {
	ClientID        string
	ClientName      string
	ServiceID       string
	ServiceName     string
	Start           time.Time
	DurationMinutes int
	Status          Status
	Notes           string
}
