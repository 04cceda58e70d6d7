package reporting

import (
	"math"
	"testing"
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/availability"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/catalog"
)

func TestBuildDaySummary(t *testing.T) {
	ledger := booking.NewLedger()
	cat := catalog.New()
	cat.SeedDefaultServices()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	book := func(serviceID string, start time.Time, duration int, status booking.Status) {
		t.Helper()
		if _, err := ledger.Book(booking.Draft{
			ClientName:      "Client",
			ServiceID:       serviceID,
			Start:           start,
			DurationMinutes: duration,
			Status:          status,
		}); err != nil {
			t.Fatalf("seed booking failed: %v", err)
		}
	}

	book("svc-womens-haircut", day.Add(9*time.Hour), 60, booking.StatusConfirmed)
	book("svc-blowout", day.Add(11*time.Hour), 45, booking.StatusCancelled)
	book("svc-keratin", day.Add(16*time.Hour), 180, booking.StatusNoShow)
	// Different day, must not appear.
	book("svc-blowout", day.AddDate(0, 0, 1).Add(11*time.Hour), 45, booking.StatusConfirmed)

	hours := availability.WorkingHours{StartHour: 9, EndHour: 19}
	summary, err := BuildDaySummary(ledger, cat, day, hours, 30)
	if err != nil {
		t.Fatalf("BuildDaySummary failed: %v", err)
	}

	if summary.Date != "2026-03-02" {
		t.Fatalf("unexpected date %q", summary.Date)
	}
	if summary.Appointments != 1 {
		t.Fatalf("expected 1 served appointment, got %d", summary.Appointments)
	}
	if summary.Cancelled != 1 {
		t.Fatalf("expected 1 cancellation, got %d", summary.Cancelled)
	}
	if summary.Revenue != 75 {
		t.Fatalf("cancellations and no-shows must not earn revenue, got %v", summary.Revenue)
	}
	// Only the confirmed 60 minute appointment blocks slots.
	if summary.TotalSlots != 20 || summary.OpenSlots != 18 {
		t.Fatalf("expected 18/20 open slots, got %d/%d", summary.OpenSlots, summary.TotalSlots)
	}
	if math.Abs(summary.FillRate-0.1) > 1e-9 {
		t.Fatalf("expected fill rate 0.1, got %v", summary.FillRate)
	}
}

func TestBuildDaySummary_EmptyDay(t *testing.T) {
	ledger := booking.NewLedger()
	cat := catalog.New()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	summary, err := BuildDaySummary(ledger, cat, day, availability.WorkingHours{StartHour: 9, EndHour: 19}, 30)
	if err != nil {
		t.Fatalf("BuildDaySummary failed: %v", err)
	}
	if summary.Appointments != 0 || summary.Revenue != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if summary.OpenSlots != summary.TotalSlots {
		t.Fatalf("all slots should be open on an empty day, got %d/%d", summary.OpenSlots, summary.TotalSlots)
	}
	if summary.FillRate != 0 {
		t.Fatalf("expected fill rate 0, got %v", summary.FillRate)
	}
}
