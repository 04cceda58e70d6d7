package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/catalog"
)

func (h *BookingHandler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.catalog.Services())
	case http.MethodPost:
		var req struct {
			Name            string  `json:"name"`
			Description     string  `json:"description"`
			DurationMinutes int     `json:"duration_minutes"`
			Price           float64 `json:"price"`
			Category        string  `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		if req.DurationMinutes <= 0 {
			http.Error(w, "duration_minutes must be positive", http.StatusBadRequest)
			return
		}
		if req.Price < 0 {
			http.Error(w, "price must not be negative", http.StatusBadRequest)
			return
		}
		svc := h.catalog.AddService(catalog.Service{
			Name:            req.Name,
			Description:     strings.TrimSpace(req.Description),
			DurationMinutes: req.DurationMinutes,
			Price:           req.Price,
			Category:        strings.TrimSpace(req.Category),
			Active:          true,
		})
		writeJSON(w, http.StatusCreated, svc)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BookingHandler) Clients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.catalog.Clients())
	case http.MethodPost:
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
			Notes string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		cl := h.catalog.AddClient(catalog.Client{
			Name:  req.Name,
			Email: strings.TrimSpace(req.Email),
			Phone: strings.TrimSpace(req.Phone),
			Notes: strings.TrimSpace(req.Notes),
		})
		writeJSON(w, http.StatusCreated, cl)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
