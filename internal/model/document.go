package model

import "time"

// SensitiveDocument is the database record for one encrypted identity
// document. The plaintext never touches the database: StorageKey
// points at the sealed blob in the object store and EncryptionKey is
// the random per-document data key needed to open it.
//
// The key currently lives next to the storage reference in the same
// datastore. Wrapping it with a master key service (envelope
// encryption) would harden this; see DESIGN.md.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user the document belongs to; exactly one owner.
//  StorageKey    – opaque object-store key of the sealed blob.
//  EncryptionKey – 32-byte random data key for the sealed payload.
//  MimeType      – declared media type of the plaintext.
//  SizeBytes     – plaintext size at upload time.
//  CreatedAt     – creation timestamp.
type SensitiveDocument struct {
	ID            uint64    `json:"id"`
	OwnerID       uint64    `json:"ownerId"`
	StorageKey    string    `json:"-"`
	EncryptionKey []byte    `json:"-"`
	MimeType      string    `json:"mimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	CreatedAt     time.Time `json:"createdAt"`
}
