package reporting

import (
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/availability"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/catalog"
)

// DaySummary carries the dashboard numbers for one calendar day.
type DaySummary struct {
	Date         string  `json:"date"`
	Appointments int     `json:"appointments"`
	Cancelled    int     `json:"cancelled"`
	Revenue      float64 `json:"revenue"`
	TotalSlots   int     `json:"total_slots"`
	OpenSlots    int     `json:"open_slots"`
	FillRate     float64 `json:"fill_rate"`
}

// BuildDaySummary aggregates the ledger and slot grid for day. Revenue sums
// catalog prices of appointments that are expected to be (or were) served;
// cancellations and no-shows do not count.
func BuildDaySummary(ledger *booking.Ledger, cat *catalog.Catalog, day time.Time, hours availability.WorkingHours, slotMinutes int) (DaySummary, error) {
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	appts := ledger.Query(booking.Filter{From: dayStart, To: dayEnd})

	summary := DaySummary{Date: dayStart.Format("2006-01-02")}
	for _, a := range appts {
		switch a.Status {
		case booking.StatusCancelled:
			summary.Cancelled++
			continue
		case booking.StatusNoShow:
			continue
		}
		summary.Appointments++
		if svc, err := cat.Service(a.ServiceID); err == nil {
			summary.Revenue += svc.Price
		}
	}

	slots, err := availability.Grid(dayStart, hours, slotMinutes, appts)
	if err != nil {
		return DaySummary{}, err
	}
	summary.TotalSlots = len(slots)
	for _, s := range slots {
		if s.Available {
			summary.OpenSlots++
		}
	}
	if summary.TotalSlots > 0 {
		summary.FillRate = float64(summary.TotalSlots-summary.OpenSlots) / float64(summary.TotalSlots)
	}
	return summary, nil
}
