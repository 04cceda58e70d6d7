package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/availability"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/reporting"
)

type slotItem struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	Available     bool   `json:"available"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

// Slots returns the full availability grid for one day, occupied slots
// annotated with the appointment holding them.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	day, ok := h.parseDay(w, r)
	if !ok {
		return
	}

	slots, err := availability.Grid(day, h.cfg.Hours, h.cfg.SlotMinutes, h.ledger.Snapshot())
	if err != nil {
		if errors.Is(err, availability.ErrInvalidConfig) {
			http.Error(w, "invalid slot grid configuration", http.StatusInternalServerError)
			return
		}
		http.Error(w, "failed to build slot grid", http.StatusInternalServerError)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		item := slotItem{
			Start:     s.Start.UTC().Format(time.RFC3339),
			End:       s.End.UTC().Format(time.RFC3339),
			Available: s.Available,
		}
		if s.OccupiedBy != nil {
			item.AppointmentID = s.OccupiedBy.ID
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) DayReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	day, ok := h.parseDay(w, r)
	if !ok {
		return
	}

	summary, err := reporting.BuildDaySummary(h.ledger, h.catalog, day, h.cfg.Hours, h.cfg.SlotMinutes)
	if err != nil {
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// parseDay reads the date query param (YYYY-MM-DD), defaulting to today.
func (h *BookingHandler) parseDay(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return h.now(), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		http.Error(w, "invalid date (want YYYY-MM-DD)", http.StatusBadRequest)
		return time.Time{}, false
	}
	return day, true
}
