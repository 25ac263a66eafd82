// Package access decides unlock eligibility for the door controller and
// manages room occupancy state.
package access

import (
	"context"
	"fmt"
	"time"

	"github.com/doorlab/roomkey-bookings/internal/clock"
	"github.com/doorlab/roomkey-bookings/internal/domain"
	"github.com/doorlab/roomkey-bookings/pkg/events"
	"github.com/doorlab/roomkey-bookings/pkg/logger"
)

type BookingStore interface {
	FindActiveForUnlock(ctx context.Context, roomID int64, code string, date domain.Date, now domain.TimeOfDay) (*domain.Booking, error)
	FindActiveAt(ctx context.Context, roomID int64, date domain.Date, now domain.TimeOfDay) (*domain.Booking, error)
}

type RoomStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (bool, error)
}

// StatusReport is the device polling payload. IsBooked reflects whether
// an active booking's window contains now; it is independent of the
// room's occupancy status and the two can disagree, e.g. after a manual
// checkout during an active window.
type StatusReport struct {
	RoomID         int64             `json:"roomId"`
	IsBooked       bool              `json:"isBooked"`
	RoomStatus     domain.RoomStatus `json:"roomStatus"`
	CurrentBooking *domain.Booking   `json:"currentBooking,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

type Gate struct {
	bookings BookingStore
	rooms    RoomStore
	clock    clock.Clock
	bus      events.Publisher
}

func NewGate(bookings BookingStore, rooms RoomStore, clk clock.Clock, bus events.Publisher) *Gate {
	return &Gate{bookings: bookings, rooms: rooms, clock: clk, bus: bus}
}

// Unlock grants iff an active booking for the room matches the code and
// its [start,end) window contains the current time. Date and time of day
// come from one clock snapshot. On grant the room is moved to occupied;
// that update is best-effort and its failure does not revoke the grant.
func (g *Gate) Unlock(ctx context.Context, roomID int64, code string) (*domain.Booking, error) {
	if roomID <= 0 {
		return nil, fmt.Errorf("%w: room id is required", domain.ErrValidation)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: access code is required", domain.ErrValidation)
	}

	now := g.clock.Now()
	booking, err := g.bookings.FindActiveForUnlock(ctx, roomID, code, now.Date, now.Time)
	if err != nil {
		return nil, fmt.Errorf("look up unlock booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrDenied
	}

	if ok, err := g.rooms.UpdateStatus(ctx, roomID, domain.RoomOccupied); err != nil || !ok {
		logger.ErrorContext(ctx, "Failed to mark room occupied after unlock",
			"error", err, "room_id", roomID, "booking_id", booking.ID)
	}

	g.publish(ctx, events.RoomUnlocked, events.RoomUnlockedEvent{
		RoomID:     roomID,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		UnlockedAt: now.Wall,
	})

	return booking, nil
}

// CheckIn marks the room occupied. Unconditional: no booking is
// required, and repeating it is a no-op on the status.
func (g *Gate) CheckIn(ctx context.Context, roomID int64) error {
	return g.setStatus(ctx, roomID, domain.RoomOccupied, events.RoomCheckedIn)
}

// CheckOut marks the room available. Unconditional and idempotent, like
// CheckIn.
func (g *Gate) CheckOut(ctx context.Context, roomID int64) error {
	return g.setStatus(ctx, roomID, domain.RoomAvailable, events.RoomCheckedOut)
}

func (g *Gate) setStatus(ctx context.Context, roomID int64, status domain.RoomStatus, subject string) error {
	ok, err := g.rooms.UpdateStatus(ctx, roomID, status)
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	if !ok {
		return fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}

	g.publish(ctx, subject, events.RoomOccupancyEvent{
		RoomID:    roomID,
		Status:    string(status),
		ChangedAt: g.clock.Now().Wall,
	})
	return nil
}

// Status reports the device polling view of a room.
func (g *Gate) Status(ctx context.Context, roomID int64) (*StatusReport, error) {
	room, err := g.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}

	now := g.clock.Now()
	booking, err := g.bookings.FindActiveAt(ctx, roomID, now.Date, now.Time)
	if err != nil {
		return nil, fmt.Errorf("look up current booking: %w", err)
	}

	return &StatusReport{
		RoomID:         roomID,
		IsBooked:       booking != nil,
		RoomStatus:     room.Status,
		CurrentBooking: booking,
		Timestamp:      now.Wall,
	}, nil
}

func (g *Gate) publish(ctx context.Context, subject string, payload interface{}) {
	if g.bus == nil {
		return
	}
	if err := g.bus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
