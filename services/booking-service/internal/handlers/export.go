package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
)

// ExportCSV streams the appointment book as CSV, optionally narrowed by the
// same query params as the list endpoint.
func (h *BookingHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Date", "Time", "Client", "Service", "Duration", "Status"})
	for _, a := range h.ledger.Query(filter) {
		start := a.Start.UTC()
		_ = cw.Write([]string{
			start.Format("2006-01-02"),
			start.Format("15:04"),
			a.ClientName,
			a.ServiceName,
			strconv.Itoa(a.DurationMinutes),
			string(a.Status),
		})
	}
	cw.Flush()
}
