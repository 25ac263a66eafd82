package service

import (
	"context"
	"time"

	"github.com/doorlab/roomkey-bookings/internal/domain"
	"github.com/doorlab/roomkey-bookings/internal/repo/postgres"
	"github.com/doorlab/roomkey-bookings/pkg/events"
	"github.com/doorlab/roomkey-bookings/pkg/logger"
)

type BookingService interface {
	Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error)
	ListForRoomAndDate(ctx context.Context, roomID int64, date domain.Date) ([]domain.BookingInterval, error)
	Cancel(ctx context.Context, bookingID, userID int64) error
}

type bookingService struct {
	bookings postgres.BookingRepo
	bus      events.Publisher
}

func NewBookingService(bookings postgres.BookingRepo, bus events.Publisher) BookingService {
	return &bookingService{bookings: bookings, bus: bus}
}

func (s *bookingService) Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	date, start, end, err := req.Validate()
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.Create(ctx, userID, req.RoomID, date, start, end)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
		UserID:    booking.UserID,
		Date:      string(booking.Date),
		StartTime: string(booking.StartTime),
		EndTime:   string(booking.EndTime),
		CreatedAt: booking.CreatedAt,
	})

	return booking, nil
}

func (s *bookingService) ListAll(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error) {
	return s.bookings.ListAll(ctx, limit, offset)
}

func (s *bookingService) ListForRoomAndDate(ctx context.Context, roomID int64, date domain.Date) ([]domain.BookingInterval, error) {
	return s.bookings.ListForRoomAndDate(ctx, roomID, date)
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, userID int64) error {
	booking, err := s.bookings.Cancel(ctx, bookingID, userID)
	if err != nil {
		return err
	}

	s.publish(ctx, events.BookingCanceled, events.BookingCanceledEvent{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		UserID:     booking.UserID,
		CanceledAt: time.Now(),
	})

	return nil
}

func (s *bookingService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}

var _ BookingService = (*bookingService)(nil)
