// Package cryptox implements the authenticated sealing used by the
// document vault. Every document gets its own random 256-bit data key;
// the actual AES key is expanded from that data key and a per-document
// salt with HKDF-SHA256, and the plaintext is sealed with AES-256-GCM.
//
// The sealed payload layout is:
//
//	salt (16) || iv (12) || tag (16) || ciphertext
//
// Open reverses the layout and fails if any byte of the payload has
// been altered, because GCM authenticates both iv and ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	KeySize  = 32 // AES-256 data key
	saltSize = 16
	ivSize   = 12
	tagSize  = 16

	headerSize = saltSize + ivSize + tagSize
)

// ErrPayloadTooShort is returned by Open when the payload cannot even
// hold the salt/iv/tag header.
var ErrPayloadTooShort = errors.New("cryptox: sealed payload too short")

// NewKey returns a fresh random 256-bit data key.
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal encrypts plaintext under the given data key and returns the
// sealed payload. A new random salt and iv are generated per call, so
// sealing the same plaintext twice never yields the same payload.
func Seal(plaintext, key []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return nil, err
	}

	// Seal appends the tag after the ciphertext; the payload layout
	// wants it up front, so split and reassemble.
	sealed := aead.Seal(nil, iv, plaintext, nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	payload := make([]byte, 0, headerSize+len(ct))
	payload = append(payload, salt...)
	payload = append(payload, iv...)
	payload = append(payload, tag...)
	payload = append(payload, ct...)
	return payload, nil
}

// Open decrypts a sealed payload with the given data key. It returns
// an error when the payload is malformed or when tag verification
// fails; no partial plaintext is ever returned.
func Open(payload, key []byte) ([]byte, error) {
	if len(payload) < headerSize {
		return nil, ErrPayloadTooShort
	}
	salt := payload[:saltSize]
	iv := payload[saltSize : saltSize+ivSize]
	tag := payload[saltSize+ivSize : headerSize]
	ct := payload[headerSize:]

	aead, err := newAEAD(key, salt)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)
	return aead.Open(nil, iv, sealed, nil)
}

// newAEAD expands the data key with HKDF-SHA256 over the salt and
// builds an AES-256-GCM AEAD from the result.
func newAEAD(key, salt []byte) (cipher.AEAD, error) {
	aesKey := make([]byte, KeySize)
	kdf := hkdf.New(sha256.New, key, salt, []byte("document-vault-seal"))
	if _, err := io.ReadFull(kdf, aesKey); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
