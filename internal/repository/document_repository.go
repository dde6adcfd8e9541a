package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// DocumentRepo persists vault document records: owner, object-store
// key and the per-document data key. Ciphertext itself lives in the
// object store, never in this table.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo returns a new DocumentRepo bound to the given database.
func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

// CreateDocument inserts a new document record and populates the
// generated ID and timestamps on the given model.
func (r *DocumentRepo) CreateDocument(ctx context.Context, d *model.SensitiveDocument) error {
	const ins = `INSERT INTO documents (owner_id, storage_key, encryption_key, mime_type, size_bytes)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, ins, d.OwnerID, d.StorageKey, d.EncryptionKey, d.MimeType, d.SizeBytes)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.DocumentByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*d = *stored
	return nil
}

// DocumentByID returns a single document record or ErrNotFound.
func (r *DocumentRepo) DocumentByID(ctx context.Context, id uint64) (*model.SensitiveDocument, error) {
	const q = `SELECT id, owner_id, storage_key, encryption_key, mime_type, size_bytes, created_at
		FROM documents WHERE id = ?`
	var d model.SensitiveDocument
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.OwnerID, &d.StorageKey, &d.EncryptionKey, &d.MimeType, &d.SizeBytes, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}
	return &d, nil
}

// DeleteDocument removes a document record. Deleting a missing row
// returns ErrNotFound so callers can detect reconciliation races.
func (r *DocumentRepo) DeleteDocument(ctx context.Context, id uint64) error {
	const q = `DELETE FROM documents WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
