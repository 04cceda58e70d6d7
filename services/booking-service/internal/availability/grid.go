package availability

import (
	"errors"
	"sort"
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
)

var ErrInvalidConfig = errors.New("invalid slot grid configuration")

// WorkingHours is the daily bookable window, whole hours on a 24h clock.
type WorkingHours struct {
	StartHour int
	EndHour   int
}

func (h WorkingHours) validate() error {
	if h.StartHour < 0 || h.EndHour > 24 || h.StartHour >= h.EndHour {
		return ErrInvalidConfig
	}
	return nil
}

// Slot is one grid entry. Available is false when a pending or confirmed
// appointment overlaps [Start, End); OccupiedBy then points at the
// earliest-starting such appointment.
type Slot struct {
	Start      time.Time
	End        time.Time
	Available  bool
	OccupiedBy *booking.Appointment
}

// Grid enumerates the bookable slots for one calendar day. Slot starts anchor
// to StartHour and advance in slotMinutes steps while still before EndHour,
// so a step that does not divide the window yields a final slot extending
// past closing. Appointments outside the day are ignored; past slots are
// still returned, greying them out is the caller's concern.
func Grid(day time.Time, hours WorkingHours, slotMinutes int, appts []booking.Appointment) ([]Slot, error) {
	if slotMinutes <= 0 {
		return nil, ErrInvalidConfig
	}
	if err := hours.validate(); err != nil {
		return nil, err
	}

	y, m, d := day.Date()
	loc := day.Location()
	open := time.Date(y, m, d, hours.StartHour, 0, 0, 0, loc)
	close := time.Date(y, m, d, hours.EndHour, 0, 0, 0, loc)
	step := time.Duration(slotMinutes) * time.Minute

	// Blocking appointments intersecting the working window, ordered by
	// start (ties keep input order) so the first overlap found per slot is
	// the earliest-starting one.
	var busy []booking.Appointment
	for _, a := range appts {
		if !a.Status.Blocking() {
			continue
		}
		if a.Start.Before(close) && a.End().After(open) {
			busy = append(busy, a)
		}
	}
	sort.SliceStable(busy, func(i, j int) bool {
		return busy[i].Start.Before(busy[j].Start)
	})

	var slots []Slot
	for s := open; s.Before(close); s = s.Add(step) {
		e := s.Add(step)
		slot := Slot{Start: s, End: e, Available: true}
		for i := range busy {
			// Half-open overlap: [s,e) meets [a.Start,a.End()).
			if s.Before(busy[i].End()) && busy[i].Start.Before(e) {
				slot.Available = false
				slot.OccupiedBy = &busy[i]
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
