package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BookingRepo provides persistence for bookings. All timestamp fields
// are stored in UTC. Bookings are never deleted: terminal statuses
// retire them while the rows stay behind for audit.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, room_id, hotel_id, user_id, check_in, check_out,
	status, payment_status, total_amount_cents, occupants, document_meta,
	created_at, updated_at`

// scanBooking reads one bookings row. The occupants and document_meta
// JSON columns are unmarshaled into their model types.
func scanBooking(row interface {
	Scan(dest ...any) error
}) (*model.Booking, error) {
	var b model.Booking
	var occupants, docMeta []byte
	err := row.Scan(
		&b.ID, &b.RoomID, &b.HotelID, &b.UserID, &b.CheckIn, &b.CheckOut,
		&b.Status, &b.PaymentStatus, &b.TotalAmountCents, &occupants, &docMeta,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(occupants) > 0 {
		if err := json.Unmarshal(occupants, &b.Occupants); err != nil {
			return nil, err
		}
	}
	if len(docMeta) > 0 {
		if err := json.Unmarshal(docMeta, &b.DocumentMeta); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

// CreateBookingAtomic runs the read-check-write sequence of a booking
// request inside one transaction. It locks the room row first, which
// serializes concurrent requests per room without blocking other
// rooms, then hands the room and the live (PENDING/CONFIRMED/
// CHECKED_IN) bookings to decide. If decide returns a booking it is
// inserted and the transaction commits; if decide returns an error
// the transaction rolls back with no row written.
//
// InnoDB aborts (deadlock, lock wait timeout) surface as
// ErrSerialization so the caller can retry the whole operation.
func (r *BookingRepo) CreateBookingAtomic(ctx context.Context, roomID uint64, decide func(room *model.Room, live []model.Booking) (*model.Booking, error)) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	room, err := lockRoomTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	live, err := liveBookingsTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}

	booking, err := decide(room, live)
	if err != nil {
		return nil, err
	}

	const ins = `INSERT INTO bookings
		(room_id, hotel_id, user_id, check_in, check_out, status, payment_status, total_amount_cents, occupants, document_meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	occupants, err := json.Marshal(booking.Occupants)
	if err != nil {
		return nil, err
	}
	var docMeta any
	if booking.DocumentMeta != nil {
		docMeta, err = json.Marshal(booking.DocumentMeta)
		if err != nil {
			return nil, err
		}
	}
	res, err := tx.ExecContext(ctx, ins,
		booking.RoomID, booking.HotelID, booking.UserID,
		booking.CheckIn.UTC(), booking.CheckOut.UTC(),
		booking.Status, booking.PaymentStatus, booking.TotalAmountCents,
		occupants, docMeta,
	)
	if err != nil {
		return nil, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	stored, err := scanBooking(tx.QueryRowContext(ctx, sel, id))
	if err != nil {
		return nil, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}
	committed = true
	return stored, nil
}

// UpdateStatusAtomic locks the booking row, passes the current record
// to decide, and persists the status decide returns. The state machine
// and actor checks live in decide; this method only guarantees that
// the read and the write happen under one lock.
func (r *BookingRepo) UpdateStatusAtomic(ctx context.Context, bookingID uint64, decide func(b *model.Booking) (model.BookingStatus, error)) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	booking, err := scanBooking(tx.QueryRowContext(ctx, q, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}

	next, err := decide(booking)
	if err != nil {
		return nil, err
	}

	const upd = `UPDATE bookings SET status = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, next, bookingID); err != nil {
		return nil, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}
	committed = true
	booking.Status = next
	return booking, nil
}

// BookingByID returns a single booking or ErrNotFound.
func (r *BookingRepo) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}
	return b, nil
}

// ListByUser returns all bookings created by the given user, newest
// first. When none exist an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListByHotel returns all bookings for rooms of the given hotel,
// newest first. Callers are responsible for verifying that the
// requester owns the hotel.
func (r *BookingRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE hotel_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, hotelID)
}

// ListByRoom returns all bookings for one room, newest first.
func (r *BookingRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, roomID)
}

func (r *BookingRepo) list(ctx context.Context, query string, arg any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// lockRoomTx fetches the room row under an exclusive lock. Locking
// the parent row is what gives per-room mutual exclusion for the
// booking read-check-write sequence even when the room has no
// bookings yet.
func lockRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) (*model.Room, error) {
	const q = `SELECT id, hotel_id, code, room_type, nightly_rate_cents, capacity, status, created_at, updated_at
		FROM rooms WHERE id = ? FOR UPDATE`
	var rm model.Room
	err := tx.QueryRowContext(ctx, q, roomID).Scan(
		&rm.ID, &rm.HotelID, &rm.Code, &rm.RoomType, &rm.NightlyRateCents,
		&rm.Capacity, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}
	return &rm, nil
}

// liveBookingsTx returns the bookings that still claim a date range on
// the room, locked for the duration of the transaction.
func liveBookingsTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
		WHERE room_id = ? AND status IN ('PENDING', 'CONFIRMED', 'CHECKED_IN')
		FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
