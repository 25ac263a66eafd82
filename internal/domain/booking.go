package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingActive, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

type Booking struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	RoomID     int64         `json:"room_id"`
	Date       Date          `json:"date"`
	StartTime  TimeOfDay     `json:"start_time"`
	EndTime    TimeOfDay     `json:"end_time"`
	AccessCode string        `json:"access_code"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// BookingDetail is a booking joined with its room and owner names, the
// shape the listing endpoints return.
type BookingDetail struct {
	Booking
	RoomName string `json:"room_name"`
	Username string `json:"username"`
}

// BookingInterval is the projection the availability engine consumes.
type BookingInterval struct {
	StartTime TimeOfDay     `json:"start_time"`
	EndTime   TimeOfDay     `json:"end_time"`
	Status    BookingStatus `json:"status"`
}

type CreateBookingRequest struct {
	RoomID    int64  `json:"room_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Validate checks field presence and shape and returns the parsed slot.
// The overlap check against other bookings happens in the store, inside
// the create transaction.
func (r *CreateBookingRequest) Validate() (Date, TimeOfDay, TimeOfDay, error) {
	if r.RoomID <= 0 {
		return "", "", "", fmt.Errorf("%w: room_id is required", ErrValidation)
	}
	date, err := ParseDate(r.Date)
	if err != nil {
		return "", "", "", err
	}
	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return "", "", "", err
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return "", "", "", err
	}
	if !start.Before(end) {
		return "", "", "", fmt.Errorf("%w: start_time must be before end_time", ErrValidation)
	}
	return date, start, end, nil
}

// GenerateAccessCode draws a 6-digit code uniformly from 100000-999999.
// Codes are not globally unique; the unlock lookup always filters by
// room, date and time window as well.
func GenerateAccessCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails if the platform entropy source is
		// broken.
		return fmt.Sprintf("%06d", 100000+time.Now().UnixNano()%900000)
	}
	return fmt.Sprintf("%06d", 100000+n.Int64())
}
