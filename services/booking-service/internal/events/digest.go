package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/availability"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
)

// SlotDigest periodically publishes today's still-open slots so the
// marketing side can promote empty chair time. Read-only over the ledger.
type SlotDigest struct {
	ledger      *booking.Ledger
	publisher   *Publisher
	logger      *slog.Logger
	hours       availability.WorkingHours
	slotMinutes int
	interval    time.Duration
	now         func() time.Time
}

type OpenSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type OpenSlotsPayload struct {
	Date      string     `json:"date"`
	OpenSlots []OpenSlot `json:"open_slots"`
	Count     int        `json:"count"`
}

func NewSlotDigest(ledger *booking.Ledger, publisher *Publisher, logger *slog.Logger, hours availability.WorkingHours, slotMinutes int, interval time.Duration) *SlotDigest {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &SlotDigest{
		ledger:      ledger,
		publisher:   publisher,
		logger:      logger,
		hours:       hours,
		slotMinutes: slotMinutes,
		interval:    interval,
		now:         time.Now,
	}
}

func (d *SlotDigest) Run(ctx context.Context) {
	if !d.publisher.Enabled() {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, err := d.build(d.now())
			if err != nil {
				d.logger.Error("open slot digest failed", "err", err)
				continue
			}
			d.publisher.Publish(ctx, TypeOpenSlots, payload.Date, payload)
		}
	}
}

// build computes the open slots for the day containing now. Slots already in
// the past are left out; nobody promotes a slot that has gone by.
func (d *SlotDigest) build(now time.Time) (OpenSlotsPayload, error) {
	slots, err := availability.Grid(now, d.hours, d.slotMinutes, d.ledger.Snapshot())
	if err != nil {
		return OpenSlotsPayload{}, err
	}

	payload := OpenSlotsPayload{Date: now.Format("2006-01-02")}
	for _, s := range slots {
		if !s.Available || s.Start.Before(now) {
			continue
		}
		payload.OpenSlots = append(payload.OpenSlots, OpenSlot{
			Start: s.Start.Format(time.RFC3339),
			End:   s.End.Format(time.RFC3339),
		})
	}
	payload.Count = len(payload.OpenSlots)
	return payload, nil
}
