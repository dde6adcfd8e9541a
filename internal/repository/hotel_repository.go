package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// HotelRepo provides CRUD operations for hotels.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo returns a new HotelRepo bound to the given database.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// codeAttempts bounds the regenerate-on-conflict loop for short codes.
// Codes are random, so collisions are rare; the unique constraint on
// the code column is what actually enforces uniqueness.
const codeAttempts = 5

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newShortCode returns an 8-character random code drawn from an
// alphabet without easily confused characters.
func newShortCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// Create inserts a new hotel, generating its public short code. On a
// code collision the insert is retried with a fresh code a bounded
// number of times before giving up with ErrDuplicate.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	const ins = `INSERT INTO hotels (owner_id, code, name, city) VALUES (?, ?, ?, ?)`
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := newShortCode()
		if err != nil {
			return err
		}
		res, err := r.db.ExecContext(ctx, ins, h.OwnerID, code, h.Name, h.City)
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
		return r.fill(ctx, uint64(id), h)
	}
	return fmt.Errorf("hotel code generation: %w", ErrDuplicate)
}

// GetByID returns a single hotel or ErrNotFound.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	const q = `SELECT id, owner_id, code, name, city, created_at, updated_at FROM hotels WHERE id = ?`
	var h model.Hotel
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&h.ID, &h.OwnerID, &h.Code, &h.Name, &h.City, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}
	return &h, nil
}

// OwnerOf returns the owner user ID of a hotel or ErrNotFound.
func (r *HotelRepo) OwnerOf(ctx context.Context, hotelID uint64) (uint64, error) {
	const q = `SELECT owner_id FROM hotels WHERE id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, hotelID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, mapError(err)
	}
	return ownerID, nil
}

// ListByOwner returns all hotels owned by the given user.
func (r *HotelRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Hotel, error) {
	const q = `SELECT id, owner_id, code, name, city, created_at, updated_at
		FROM hotels WHERE owner_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	out := make([]model.Hotel, 0)
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Code, &h.Name, &h.City, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// fill reloads a freshly inserted row to populate generated fields.
func (r *HotelRepo) fill(ctx context.Context, id uint64, h *model.Hotel) error {
	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*h = *stored
	return nil
}
