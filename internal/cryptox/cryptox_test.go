package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)
	require.Len(t, key, KeySize)

	plaintext := []byte("passport scan bytes, not actually a JPEG")
	payload, err := Seal(plaintext, key)
	require.NoError(t, err)
	require.Len(t, payload, headerSize+len(plaintext))

	got, err := Open(payload, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestSealIsRandomized(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)

	plaintext := []byte("same plaintext")
	a, err := Seal(plaintext, key)
	require.NoError(t, err)
	b, err := Seal(plaintext, key)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(a, b), "sealing twice must not repeat salt/iv")
}

func TestOpenDetectsTampering(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)
	payload, err := Seal([]byte("sensitive identity document"), key)
	require.NoError(t, err)

	// Flip one bit in every region of the payload: salt, iv, tag and
	// ciphertext. All of them must fail verification.
	for _, offset := range []int{0, saltSize, saltSize + ivSize, headerSize} {
		tampered := append([]byte(nil), payload...)
		tampered[offset] ^= 0x01
		got, err := Open(tampered, key)
		assert.Error(t, err, "bit flip at offset %d", offset)
		assert.Nil(t, got)
	}
}

func TestOpenWrongKey(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)
	other, err := NewKey()
	require.NoError(t, err)

	payload, err := Seal([]byte("data"), key)
	require.NoError(t, err)

	got, err := Open(payload, other)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestOpenShortPayload(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)

	_, err = Open(make([]byte, headerSize-1), key)
	assert.ErrorIs(t, err, ErrPayloadTooShort)
}

func TestSealEmptyPlaintext(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)

	payload, err := Seal(nil, key)
	require.NoError(t, err)

	got, err := Open(payload, key)
	require.NoError(t, err)
	assert.Empty(t, got)
}
