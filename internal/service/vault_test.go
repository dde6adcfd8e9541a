package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// memDocs is an in-memory DocumentStore.
type memDocs struct {
	mu      sync.Mutex
	docs    map[uint64]*model.SensitiveDocument
	nextID  uint64
	failIns bool // reject the next insert
	failDel bool // reject deletes
}

func newMemDocs() *memDocs {
	return &memDocs{docs: make(map[uint64]*model.SensitiveDocument)}
}

func (m *memDocs) CreateDocument(ctx context.Context, d *model.SensitiveDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIns {
		m.failIns = false
		return errors.New("insert failed")
	}
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now().UTC()
	stored := *d
	m.docs[d.ID] = &stored
	return nil
}

func (m *memDocs) DocumentByID(ctx context.Context, id uint64) (*model.SensitiveDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *d
	return &out, nil
}

func (m *memDocs) DeleteDocument(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel {
		return errors.New("delete failed")
	}
	if _, ok := m.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// memBlobs is an in-memory BlobStore with switchable failures.
type memBlobs struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	failPut  bool
	failGet  bool
	failDel  bool
	tamperer func(key string, blob []byte) []byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (m *memBlobs) Put(ctx context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("put failed")
	}
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (m *memBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("get failed")
	}
	blob, ok := m.blobs[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	out := append([]byte(nil), blob...)
	if m.tamperer != nil {
		out = m.tamperer(key, out)
	}
	return out, nil
}

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel {
		return errors.New("delete failed")
	}
	delete(m.blobs, key)
	return nil
}

func (m *memBlobs) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://blobs.example/" + key + "?sig=abc", nil
}

var (
	docOwner = model.Principal{UserID: 42, Role: model.RoleGuest}
	docAdmin = model.Principal{UserID: 1, Role: model.RoleAdmin}
	stranger = model.Principal{UserID: 77, Role: model.RoleGuest}
)

func newTestVault(t *testing.T) (*VaultService, *memDocs, *memBlobs) {
	t.Helper()
	docs := newMemDocs()
	blobs := newMemBlobs()
	return NewVaultService(docs, blobs, 0, zerolog.Nop()), docs, blobs
}

func TestVaultStoreAndRetrieve(t *testing.T) {
	vault, _, blobs := newTestVault(t)
	ctx := context.Background()
	plaintext := []byte("passport page one")

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, plaintext, "image/png")
	require.NoError(t, err)
	assert.NotZero(t, doc.ID)
	assert.Equal(t, int64(len(plaintext)), doc.SizeBytes)

	// Only ciphertext reaches the object store.
	blobs.mu.Lock()
	stored := blobs.blobs[doc.StorageKey]
	blobs.mu.Unlock()
	require.NotEmpty(t, stored)
	assert.NotContains(t, string(stored), "passport")

	got, mimeType, err := vault.RetrieveDocument(ctx, doc.ID, docOwner)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
	assert.Equal(t, "image/png", mimeType)
}

func TestVaultStoreValidation(t *testing.T) {
	vault, _, _ := newTestVault(t)
	ctx := context.Background()

	_, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("x"), "application/zip")
	assert.ErrorIs(t, err, ErrValidation, "mime type not on the allow-list")

	_, err = vault.StoreDocument(ctx, docOwner.UserID, nil, "image/png")
	assert.ErrorIs(t, err, ErrValidation, "empty document")

	_, err = vault.StoreDocument(ctx, 0, []byte("x"), "image/png")
	assert.ErrorIs(t, err, ErrValidation, "missing owner")

	big := make([]byte, DefaultMaxDocumentBytes+1)
	_, err = vault.StoreDocument(ctx, docOwner.UserID, big, "image/png")
	assert.ErrorIs(t, err, ErrValidation, "over the size ceiling")
}

func TestVaultRetrieveAuthorization(t *testing.T) {
	vault, _, _ := newTestVault(t)
	ctx := context.Background()

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("id card"), "image/jpeg")
	require.NoError(t, err)

	_, _, err = vault.RetrieveDocument(ctx, doc.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = vault.RetrieveDocument(ctx, doc.ID, docAdmin)
	assert.NoError(t, err, "admins may read any document")

	_, _, err = vault.RetrieveDocument(ctx, doc.ID+100, docOwner)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVaultTamperedBlobFailsIntegrity(t *testing.T) {
	vault, _, blobs := newTestVault(t)
	ctx := context.Background()

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("visa scan"), "application/pdf")
	require.NoError(t, err)

	blobs.tamperer = func(key string, blob []byte) []byte {
		blob[len(blob)-1] ^= 0x01
		return blob
	}
	got, _, err := vault.RetrieveDocument(ctx, doc.ID, docOwner)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Nil(t, got, "no partial plaintext on integrity failure")
}

func TestVaultStoreCompensatesFailedInsert(t *testing.T) {
	vault, docs, blobs := newTestVault(t)
	ctx := context.Background()

	docs.failIns = true
	_, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("doc"), "image/png")
	require.Error(t, err)

	// The sealed blob must not outlive the failed record insert.
	blobs.mu.Lock()
	assert.Empty(t, blobs.blobs)
	blobs.mu.Unlock()
}

func TestVaultStorePutFailure(t *testing.T) {
	vault, docs, blobs := newTestVault(t)
	ctx := context.Background()

	blobs.failPut = true
	_, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("doc"), "image/png")
	assert.ErrorIs(t, err, ErrTransientObjectStore)

	docs.mu.Lock()
	assert.Empty(t, docs.docs, "no record without a durable blob")
	docs.mu.Unlock()
}

func TestVaultDelete(t *testing.T) {
	vault, docs, blobs := newTestVault(t)
	ctx := context.Background()

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("doc"), "image/png")
	require.NoError(t, err)

	require.NoError(t, vault.DeleteDocument(ctx, doc.ID, docOwner))
	blobs.mu.Lock()
	assert.Empty(t, blobs.blobs)
	blobs.mu.Unlock()
	docs.mu.Lock()
	assert.Empty(t, docs.docs)
	docs.mu.Unlock()

	assert.ErrorIs(t, vault.DeleteDocument(ctx, doc.ID, docOwner), repository.ErrNotFound)
}

func TestVaultDeleteAuthorization(t *testing.T) {
	vault, _, _ := newTestVault(t)
	ctx := context.Background()

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("doc"), "image/png")
	require.NoError(t, err)

	assert.ErrorIs(t, vault.DeleteDocument(ctx, doc.ID, stranger), ErrForbidden)
	assert.NoError(t, vault.DeleteDocument(ctx, doc.ID, docAdmin))
}

func TestVaultDeleteBlobFailureKeepsRecord(t *testing.T) {
	vault, docs, blobs := newTestVault(t)
	ctx := context.Background()

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("doc"), "image/png")
	require.NoError(t, err)

	blobs.failDel = true
	err = vault.DeleteDocument(ctx, doc.ID, docOwner)
	assert.ErrorIs(t, err, ErrTransientObjectStore)

	// Nothing partial: record still present, delete can be retried.
	docs.mu.Lock()
	assert.Len(t, docs.docs, 1)
	docs.mu.Unlock()
}

func TestVaultDeleteRecordFailureNeedsReconciliation(t *testing.T) {
	vault, docs, blobs := newTestVault(t)
	ctx := context.Background()

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("doc"), "image/png")
	require.NoError(t, err)

	docs.failDel = true
	err = vault.DeleteDocument(ctx, doc.ID, docOwner)
	assert.ErrorIs(t, err, ErrReconciliation)

	// Blob is gone, record dangles until an operator removes it.
	blobs.mu.Lock()
	assert.Empty(t, blobs.blobs)
	blobs.mu.Unlock()
	docs.mu.Lock()
	assert.Len(t, docs.docs, 1)
	docs.mu.Unlock()
}

func TestVaultDocumentLink(t *testing.T) {
	vault, _, _ := newTestVault(t)
	ctx := context.Background()

	doc, err := vault.StoreDocument(ctx, docOwner.UserID, []byte("doc"), "image/png")
	require.NoError(t, err)

	url, err := vault.DocumentLink(ctx, doc.ID, docOwner, 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, doc.StorageKey)

	_, err = vault.DocumentLink(ctx, doc.ID, stranger, 15*time.Minute)
	assert.ErrorIs(t, err, ErrForbidden)
}
