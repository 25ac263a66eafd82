// Package availability computes bookable time slots for a room and date
// by subtracting active bookings from a fixed hourly grid.
package availability

import (
	"context"
	"fmt"

	"github.com/doorlab/roomkey-bookings/internal/domain"
)

// Store is the read side of the booking store the engine consumes.
type Store interface {
	ListForRoomAndDate(ctx context.Context, roomID int64, date domain.Date) ([]domain.BookingInterval, error)
}

// Slot is one grid interval. End wraps to "00:00" for the slot ending at
// midnight, matching the wire format the booking UI expects.
type Slot struct {
	Start domain.TimeOfDay `json:"start"`
	End   domain.TimeOfDay `json:"end"`
}

type Engine struct {
	store     Store
	startHour int
	endHour   int
}

// NewEngine builds an engine whose grid spans [startHour,endHour) in
// hourly slots. Out-of-range bounds fall back to the full day.
func NewEngine(store Store, startHour, endHour int) *Engine {
	if startHour < 0 || startHour > 23 || endHour <= startHour || endHour > 24 {
		startHour, endHour = 0, 24
	}
	return &Engine{store: store, startHour: startHour, endHour: endHour}
}

// Grid returns the canonical slot sequence for a day, in order.
func (e *Engine) Grid() []Slot {
	slots := make([]Slot, 0, e.endHour-e.startHour)
	for h := e.startHour; h < e.endHour; h++ {
		slots = append(slots, Slot{
			Start: domain.TimeOfDay(fmt.Sprintf("%02d:00", h)),
			End:   domain.TimeOfDay(fmt.Sprintf("%02d:00", (h+1)%24)),
		})
	}
	return slots
}

// AvailableSlots returns the grid minus every slot that overlaps an
// active booking. A booking with off-grid boundaries suppresses every
// slot it touches, not just the one containing its start.
func (e *Engine) AvailableSlots(ctx context.Context, roomID int64, date domain.Date) ([]Slot, error) {
	bookings, err := e.store.ListForRoomAndDate(ctx, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings for availability: %w", err)
	}

	free := make([]Slot, 0, e.endHour-e.startHour)
	for h := e.startHour; h < e.endHour; h++ {
		slotStart := h * 60
		slotEnd := (h + 1) * 60

		booked := false
		for _, b := range bookings {
			if slotStart < b.EndTime.Minutes() && b.StartTime.Minutes() < slotEnd {
				booked = true
				break
			}
		}
		if !booked {
			free = append(free, Slot{
				Start: domain.TimeOfDay(fmt.Sprintf("%02d:00", h)),
				End:   domain.TimeOfDay(fmt.Sprintf("%02d:00", (h+1)%24)),
			})
		}
	}
	return free, nil
}
