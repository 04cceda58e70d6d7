package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/availability"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/catalog"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/events"
)

// Saver is notified after successful mutations so the persistence
// collaborator can snapshot the ledger.
type Saver interface {
	MarkDirty()
}

type Config struct {
	Hours       availability.WorkingHours
	SlotMinutes int
}

type BookingHandler struct {
	ledger  *booking.Ledger
	catalog *catalog.Catalog
	events  *events.Publisher
	saver   Saver
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

func NewBookingHandler(ledger *booking.Ledger, cat *catalog.Catalog, publisher *events.Publisher, saver Saver, logger *slog.Logger, cfg Config) *BookingHandler {
	return &BookingHandler{
		ledger:  ledger,
		catalog: cat,
		events:  publisher,
		saver:   saver,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (h *BookingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/appointments", h.Appointments)
	mux.HandleFunc("/appointments/reschedule", h.Reschedule)
	mux.HandleFunc("/appointments/status", h.UpdateStatus)
	mux.HandleFunc("/appointments/cancel", h.Cancel)
	mux.HandleFunc("/appointments/delete", h.Delete)
	mux.HandleFunc("/appointments/export", h.ExportCSV)
	mux.HandleFunc("/slots", h.Slots)
	mux.HandleFunc("/reports/day", h.DayReport)
	mux.HandleFunc("/services", h.Services)
	mux.HandleFunc("/clients", h.Clients)
}

type appointmentItem struct {
	ID              string `json:"id"`
	ClientID        string `json:"client_id"`
	ClientName      string `json:"client_name"`
	ServiceID       string `json:"service_id"`
	ServiceName     string `json:"service_name"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at"`
}

func toItem(a booking.Appointment) appointmentItem {
	return appointmentItem{
		ID:              a.ID,
		ClientID:        a.ClientID,
		ClientName:      a.ClientName,
		ServiceID:       a.ServiceID,
		ServiceName:     a.ServiceName,
		Start:           a.Start.UTC().Format(time.RFC3339),
		End:             a.End().UTC().Format(time.RFC3339),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *BookingHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type createAppointmentRequest struct {
	ClientID        string `json:"client_id"`
	ClientName      string `json:"client_name"`
	ServiceID       string `json:"service_id"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ServiceID = strings.TrimSpace(req.ServiceID)

	if req.ServiceID == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}
	if req.ClientID == "" && req.ClientName == "" {
		http.Error(w, "client_id or client_name required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}

	svc, err := h.catalog.Service(req.ServiceID)
	if err != nil {
		http.Error(w, "unknown service_id", http.StatusBadRequest)
		return
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = svc.DurationMinutes
	}

	clientName := req.ClientName
	if req.ClientID != "" {
		if cl, err := h.catalog.Client(req.ClientID); err == nil {
			clientName = cl.Name
		}
	}

	status := booking.Status(strings.TrimSpace(req.Status))
	if status != "" && !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	appt, err := h.ledger.Book(booking.Draft{
		ClientID:        req.ClientID,
		ClientName:      clientName,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		Start:           start,
		DurationMinutes: duration,
		Status:          status,
		Notes:           strings.TrimSpace(req.Notes),
	})
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.afterMutation(r, events.TypeBooked, appt)
	writeJSON(w, http.StatusCreated, toItem(appt))
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	appts := h.ledger.Query(filter)
	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, toItem(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) parseFilter(w http.ResponseWriter, r *http.Request) (booking.Filter, bool) {
	q := r.URL.Query()
	var filter booking.Filter

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid date (want YYYY-MM-DD)", http.StatusBadRequest)
			return booking.Filter{}, false
		}
		filter.From = day
		filter.To = day.AddDate(0, 0, 1)
	} else {
		if raw := strings.TrimSpace(q.Get("from")); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "invalid from", http.StatusBadRequest)
				return booking.Filter{}, false
			}
			filter.From = t
		}
		if raw := strings.TrimSpace(q.Get("to")); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "invalid to", http.StatusBadRequest)
				return booking.Filter{}, false
			}
			filter.To = t
		}
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := booking.Status(raw)
		if !status.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return booking.Filter{}, false
		}
		filter.Status = status
	}
	filter.ClientID = strings.TrimSpace(q.Get("client_id"))
	return filter, true
}

type rescheduleRequest struct {
	AppointmentID   string `json:"appointment_id"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}

	appt, err := h.ledger.Reschedule(req.AppointmentID, start, req.DurationMinutes)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.afterMutation(r, events.TypeRescheduled, appt)
	writeJSON(w, http.StatusOK, toItem(appt))
}

type statusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appt, err := h.ledger.UpdateStatus(req.AppointmentID, booking.Status(strings.TrimSpace(req.Status)))
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.afterMutation(r, events.TypeStatusChanged, appt)
	writeJSON(w, http.StatusOK, toItem(appt))
}

type idRequest struct {
	AppointmentID string `json:"appointment_id"`
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req idRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appt, err := h.ledger.Cancel(req.AppointmentID)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.afterMutation(r, events.TypeCancelled, appt)
	writeJSON(w, http.StatusOK, toItem(appt))
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req idRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appt, err := h.ledger.Get(req.AppointmentID)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	if err := h.ledger.Delete(req.AppointmentID); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.afterMutation(r, events.TypeDeleted, appt)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) afterMutation(r *http.Request, eventType string, appt booking.Appointment) {
	h.events.Publish(r.Context(), eventType, appt.ID, map[string]any{
		"appointment_id":   appt.ID,
		"client_id":        appt.ClientID,
		"service_id":       appt.ServiceID,
		"start":            appt.Start.UTC().Format(time.RFC3339),
		"end":              appt.End().UTC().Format(time.RFC3339),
		"duration_minutes": appt.DurationMinutes,
		"status":           string(appt.Status),
	})
	if h.saver != nil {
		h.saver.MarkDirty()
	}
}

func (h *BookingHandler) writeLedgerError(w http.ResponseWriter, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":                      "time slot already booked",
			"conflicting_appointment_id": conflict.ConflictingID,
		})
	case booking.IsNotFound(err):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, booking.ErrInvalidDuration):
		http.Error(w, "duration_minutes must be positive", http.StatusUnprocessableEntity)
	case errors.Is(err, booking.ErrInvalidStatus):
		http.Error(w, "invalid status", http.StatusBadRequest)
	default:
		h.logger.Error("ledger operation failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
