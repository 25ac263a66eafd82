package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doorlab/roomkey-bookings/internal/domain"
)

type BookingRepo interface {
	Create(ctx context.Context, userID, roomID int64, date domain.Date, start, end domain.TimeOfDay) (*domain.Booking, error)
	ListForRoomAndDate(ctx context.Context, roomID int64, date domain.Date) ([]domain.BookingInterval, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error)
	Cancel(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	FindActiveForUnlock(ctx context.Context, roomID int64, code string, date domain.Date, now domain.TimeOfDay) (*domain.Booking, error)
	FindActiveAt(ctx context.Context, roomID int64, date domain.Date, now domain.TimeOfDay) (*domain.Booking, error)
	ClearAll(ctx context.Context) (int64, error)
}

type BookingRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepoImpl { return &BookingRepoImpl{pool: pool} }

const bookingCols = `id, user_id, room_id, booking_date, start_time, end_time, access_code, status, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.Date,
		&b.StartTime, &b.EndTime, &b.AccessCode, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking after checking for an overlapping active
// booking on the same room and date. The check and the insert run in one
// transaction holding a per-(room,date) advisory lock, so two concurrent
// requests for the same slot cannot both observe it free.
func (r *BookingRepoImpl) Create(ctx context.Context, userID, roomID int64, date domain.Date, start, end domain.TimeOfDay) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create booking: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1::int, hashtext($2))`, roomID, string(date)); err != nil {
		return nil, fmt.Errorf("acquire booking lock: %w", err)
	}

	var roomExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1)`, roomID).Scan(&roomExists); err != nil {
		return nil, fmt.Errorf("check room: %w", err)
	}
	if !roomExists {
		return nil, fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}

	var overlaps bool
	const overlapQ = `SELECT EXISTS(
		SELECT 1 FROM bookings
		WHERE room_id=$1 AND booking_date=$2 AND status='active'
		AND start_time < $4 AND end_time > $3
	)`
	if err := tx.QueryRow(ctx, overlapQ, roomID, string(date), string(start), string(end)).Scan(&overlaps); err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if overlaps {
		return nil, domain.ErrConflict
	}

	const insertQ = `INSERT INTO bookings (user_id, room_id, booking_date, start_time, end_time, access_code, status)
		VALUES ($1,$2,$3,$4,$5,$6,'active')
		RETURNING ` + bookingCols

	code := domain.GenerateAccessCode()
	b, err := scanBooking(tx.QueryRow(ctx, insertQ, userID, roomID, string(date), string(start), string(end), code))
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepoImpl) ListForRoomAndDate(ctx context.Context, roomID int64, date domain.Date) ([]domain.BookingInterval, error) {
	const q = `SELECT start_time, end_time, status
		FROM bookings
		WHERE room_id=$1 AND booking_date=$2 AND status='active'
		ORDER BY start_time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, roomID, string(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intervals []domain.BookingInterval
	for rows.Next() {
		var iv domain.BookingInterval
		if err := rows.Scan(&iv.StartTime, &iv.EndTime, &iv.Status); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

func (r *BookingRepoImpl) ListAll(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT b.id, b.user_id, b.room_id, b.booking_date, b.start_time, b.end_time,
			b.access_code, b.status, b.created_at,
			COALESCE(r.name, ''), COALESCE(u.username, '')
		FROM bookings b
		LEFT JOIN rooms r ON b.room_id = r.id
		LEFT JOIN users u ON b.user_id = u.id
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := make([]domain.BookingDetail, 0, limit)
	for rows.Next() {
		var d domain.BookingDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.RoomID, &d.Date, &d.StartTime, &d.EndTime,
			&d.AccessCode, &d.Status, &d.CreatedAt,
			&d.RoomName, &d.Username,
		); err != nil {
			return nil, err
		}
		bs = append(bs, d)
	}
	return bs, rows.Err()
}

// Cancel soft-cancels a booking. Only the owning user matches; a second
// cancel of the same row finds nothing because the status filter no
// longer matches, which callers surface as not found.
func (r *BookingRepoImpl) Cancel(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	const q = `UPDATE bookings SET status='cancelled'
		WHERE id=$1 AND user_id=$2 AND status='active'
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, bookingID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return b, err
}

// FindActiveForUnlock returns the active booking for the room whose code
// matches and whose [start,end) window contains now on the given date.
// Returns nil, nil when there is no match.
func (r *BookingRepoImpl) FindActiveForUnlock(ctx context.Context, roomID int64, code string, date domain.Date, now domain.TimeOfDay) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
		WHERE room_id=$1 AND access_code=$2 AND status='active'
		AND booking_date=$3 AND start_time <= $4 AND $4 < end_time
		ORDER BY created_at DESC
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, roomID, code, string(date), string(now)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// FindActiveAt is FindActiveForUnlock without the code filter; the
// status endpoint uses it to report whether the room is booked right now.
func (r *BookingRepoImpl) FindActiveAt(ctx context.Context, roomID int64, date domain.Date, now domain.TimeOfDay) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
		WHERE room_id=$1 AND status='active'
		AND booking_date=$2 AND start_time <= $3 AND $3 < end_time
		ORDER BY created_at DESC
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, roomID, string(date), string(now)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *BookingRepoImpl) ClearAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `DELETE FROM bookings`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

var _ BookingRepo = (*BookingRepoImpl)(nil)
