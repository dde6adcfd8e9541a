package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomRepo provides CRUD operations for rooms. Room mutation is
// restricted to the owning hotel's owner; that check happens in the
// handlers via HotelRepo.OwnerOf before any write reaches this type.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, hotel_id, code, room_type, nightly_rate_cents, capacity, status, created_at, updated_at`

// Create inserts a new room with a generated short code, retrying on
// code collisions the same way HotelRepo.Create does.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const ins = `INSERT INTO rooms (hotel_id, code, room_type, nightly_rate_cents, capacity, status)
		VALUES (?, ?, ?, ?, ?, ?)`
	if rm.Status == "" {
		rm.Status = model.RoomAvailable
	}
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := newShortCode()
		if err != nil {
			return err
		}
		res, err := r.db.ExecContext(ctx, ins,
			rm.HotelID, code, rm.RoomType, rm.NightlyRateCents, rm.Capacity, rm.Status)
		if err != nil {
			if errors.Is(mapError(err), ErrDuplicate) {
				continue
			}
			return mapError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		stored, err := r.GetByID(ctx, uint64(id))
		if err != nil {
			return err
		}
		*rm = *stored
		return nil
	}
	return fmt.Errorf("room code generation: %w", ErrDuplicate)
}

// GetByID returns a single room or ErrNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	var rm model.Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(
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

// ListByHotel returns all rooms of a hotel ordered by code.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? ORDER BY code`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.HotelID, &rm.Code, &rm.RoomType, &rm.NightlyRateCents,
			&rm.Capacity, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// UpdateRate changes the nightly rate and type of a room. A zero
// roomType leaves the type untouched.
func (r *RoomRepo) UpdateRate(ctx context.Context, roomID uint64, rateCents int64, roomType string) error {
	const q = `UPDATE rooms SET nightly_rate_cents = ?, room_type = COALESCE(NULLIF(?, ''), room_type) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rateCents, roomType, roomID)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and a no-op update;
		// distinguish with an existence probe.
		if _, err := r.GetByID(ctx, roomID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus sets the informational status flag of a room.
func (r *RoomRepo) UpdateStatus(ctx context.Context, roomID uint64, status model.RoomStatus) error {
	const q = `UPDATE rooms SET status = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, status, roomID); err != nil {
		return mapError(err)
	}
	return nil
}
