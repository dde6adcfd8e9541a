package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/iliyamo/hotel-reservation/internal/cryptox"
	"github.com/iliyamo/hotel-reservation/internal/metrics"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// DocumentStore persists vault document records.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d *model.SensitiveDocument) error
	DocumentByID(ctx context.Context, id uint64) (*model.SensitiveDocument, error)
	DeleteDocument(ctx context.Context, id uint64) error
}

// BlobStore is the external object store holding sealed payloads.
type BlobStore interface {
	Put(ctx context.Context, key string, blob []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Bounded retry settings for object-store round-trips.
const (
	blobRetryAttempts = 2
	blobRetryBase     = 50 * time.Millisecond
)

// DefaultMaxDocumentBytes caps identity document uploads at 10 MiB.
const DefaultMaxDocumentBytes = 10 << 20

// defaultAllowedMimeTypes is the upload allow-list for identity
// documents: scans and photos only.
var defaultAllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// VaultService encrypts sensitive identity documents and stores only
// ciphertext in the object store. Plaintext exists in memory during a
// request and nowhere else; the per-document data key never leaves
// the document record.
type VaultService struct {
	docs     DocumentStore
	blobs    BlobStore
	maxBytes int64
	allowed  map[string]bool
	log      zerolog.Logger
}

// NewVaultService wires the document vault. A non-positive maxBytes
// falls back to DefaultMaxDocumentBytes.
func NewVaultService(docs DocumentStore, blobs BlobStore, maxBytes int64, log zerolog.Logger) *VaultService {
	if docs == nil || blobs == nil {
		panic("nil store passed to NewVaultService")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &VaultService{
		docs:     docs,
		blobs:    blobs,
		maxBytes: maxBytes,
		allowed:  defaultAllowedMimeTypes,
		log:      log.With().Str("component", "vault").Logger(),
	}
}

// newStorageKey mints the opaque object-store key for one sealed blob,
// partitioned by upload date.
func newStorageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("documents/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.New())
}

// StoreDocument validates, seals and stores one identity document for
// its owner. The data key is random per document, never derived from
// anything the owner controls. The caller gets back the stored record
// (without key material in its JSON form), never the plaintext or key.
func (s *VaultService) StoreDocument(ctx context.Context, ownerID uint64, plaintext []byte, mimeType string) (*model.SensitiveDocument, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: missing owner reference", ErrValidation)
	}
	if !s.allowed[mimeType] {
		return nil, fmt.Errorf("%w: mime type %q is not allowed", ErrValidation, mimeType)
	}
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrValidation)
	}
	if int64(len(plaintext)) > s.maxBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrValidation, s.maxBytes)
	}

	key, err := cryptox.NewKey()
	if err != nil {
		return nil, err
	}
	payload, err := cryptox.Seal(plaintext, key)
	if err != nil {
		return nil, err
	}

	storageKey := newStorageKey()
	if err := s.putBlob(ctx, storageKey, payload); err != nil {
		return nil, err
	}

	doc := &model.SensitiveDocument{
		OwnerID:       ownerID,
		StorageKey:    storageKey,
		EncryptionKey: key,
		MimeType:      mimeType,
		SizeBytes:     int64(len(plaintext)),
	}
	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		// The blob is already durable; compensate so no orphaned
		// ciphertext outlives a failed record insert.
		if delErr := s.blobs.Delete(ctx, storageKey); delErr != nil {
			s.log.Error().Err(delErr).Str("storage_key", storageKey).
				Msg("orphaned blob after failed document insert")
		}
		return nil, err
	}

	metrics.IncDocumentStored()
	s.log.Info().Uint64("document_id", doc.ID).Uint64("owner_id", ownerID).
		Int64("size_bytes", doc.SizeBytes).Msg("document stored")
	return doc, nil
}

// RetrieveDocument fetches and opens a sealed document. Only the owner
// or a platform admin may read it; a failed authentication tag aborts
// with ErrIntegrity and no plaintext.
func (s *VaultService) RetrieveDocument(ctx context.Context, documentID uint64, actor model.Principal) ([]byte, string, error) {
	doc, err := s.authorize(ctx, documentID, actor)
	if err != nil {
		return nil, "", err
	}

	var payload []byte
	backoff := retry.WithMaxRetries(blobRetryAttempts, retry.NewExponential(blobRetryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		blob, err := s.blobs.Get(ctx, doc.StorageKey)
		if err != nil {
			return retry.RetryableError(err)
		}
		payload = blob
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrTransientObjectStore, err)
	}

	plaintext, err := cryptox.Open(payload, doc.EncryptionKey)
	if err != nil {
		metrics.IncIntegrityFailure()
		s.log.Error().Uint64("document_id", doc.ID).Err(err).
			Msg("sealed payload failed verification")
		return nil, "", fmt.Errorf("%w: document %d", ErrIntegrity, doc.ID)
	}
	return plaintext, doc.MimeType, nil
}

// DeleteDocument removes the sealed blob and the document record. The
// blob goes first: if the record delete then fails, the partial state
// is surfaced as ErrReconciliation and logged so an operator can
// remove the dangling record.
func (s *VaultService) DeleteDocument(ctx context.Context, documentID uint64, actor model.Principal) error {
	doc, err := s.authorize(ctx, documentID, actor)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		// Record still intact, nothing partial yet; the caller may
		// retry the whole delete.
		return fmt.Errorf("%w: %s", ErrTransientObjectStore, err)
	}
	if err := s.docs.DeleteDocument(ctx, doc.ID); err != nil {
		s.log.Error().Err(err).Uint64("document_id", doc.ID).
			Str("storage_key", doc.StorageKey).
			Msg("blob deleted but record remains; operator reconciliation required")
		return fmt.Errorf("%w: document %d", ErrReconciliation, doc.ID)
	}

	s.log.Info().Uint64("document_id", doc.ID).Msg("document deleted")
	return nil
}

// DocumentLink mints a time-limited download URL for the sealed blob.
// Authorization matches RetrieveDocument. Note the link serves the
// sealed payload, not plaintext.
func (s *VaultService) DocumentLink(ctx context.Context, documentID uint64, actor model.Principal, ttl time.Duration) (string, error) {
	doc, err := s.authorize(ctx, documentID, actor)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.PresignGet(ctx, doc.StorageKey, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTransientObjectStore, err)
	}
	return url, nil
}

// authorize loads the record and enforces owner-or-admin access.
func (s *VaultService) authorize(ctx context.Context, documentID uint64, actor model.Principal) (*model.SensitiveDocument, error) {
	doc, err := s.docs.DocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: document belongs to another user", ErrForbidden)
	}
	return doc, nil
}

// putBlob uploads with bounded retries; persistent failure surfaces
// as ErrTransientObjectStore with nothing written to the database.
func (s *VaultService) putBlob(ctx context.Context, key string, payload []byte) error {
	backoff := retry.WithMaxRetries(blobRetryAttempts, retry.NewExponential(blobRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.blobs.Put(ctx, key, payload); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s", ErrTransientObjectStore, err)
	}
	return nil
}
