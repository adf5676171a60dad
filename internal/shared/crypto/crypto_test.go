package crypto

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_Deterministic(t *testing.T) {
	h := NewHasher("test-secret")

	first := h.LookupHash("AAAAA-AAAAA-AAAAA-AAAAA-AAAAA", "team-1")
	second := h.LookupHash("AAAAA-AAAAA-AAAAA-AAAAA-AAAAA", "team-1")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestHasher_DifferentTeamsDiffer(t *testing.T) {
	h := NewHasher("test-secret")

	a := h.LookupHash("AAAAA-AAAAA-AAAAA-AAAAA-AAAAA", "team-1")
	b := h.LookupHash("AAAAA-AAAAA-AAAAA-AAAAA-AAAAA", "team-2")

	assert.NotEqual(t, a, b)
}

func TestHasher_SecretChangesOutput(t *testing.T) {
	a := NewHasher("secret-a").Sum("input")
	b := NewHasher("secret-b").Sum("input")

	assert.NotEqual(t, a, b)
}

func TestSessionKey_RoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair(2048)
	require.NoError(t, err)

	sessionKey := "6d795f73657373696f6e5f6b6579"

	ciphertext, err := EncryptSessionKey(sessionKey, kp.PublicPEM)
	require.NoError(t, err)

	decrypted, err := DecryptSessionKey(ciphertext, kp.PrivatePEM)
	require.NoError(t, err)
	assert.Equal(t, sessionKey, decrypted)
}

func TestSessionKey_TamperedCiphertext(t *testing.T) {
	kp, err := GenerateKeyPair(2048)
	require.NoError(t, err)

	ciphertext, err := EncryptSessionKey("deadbeef", kp.PublicPEM)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[0] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = DecryptSessionKey(tampered, kp.PrivatePEM)
	assert.ErrorIs(t, err, ErrInvalidSessionKey)
}

func TestSessionKey_WrongKeyPair(t *testing.T) {
	kpA, err := GenerateKeyPair(2048)
	require.NoError(t, err)
	kpB, err := GenerateKeyPair(2048)
	require.NoError(t, err)

	ciphertext, err := EncryptSessionKey("deadbeef", kpA.PublicPEM)
	require.NoError(t, err)

	_, err = DecryptSessionKey(ciphertext, kpB.PrivatePEM)
	assert.ErrorIs(t, err, ErrInvalidSessionKey)
}

func TestSessionKey_MalformedBase64(t *testing.T) {
	kp, err := GenerateKeyPair(2048)
	require.NoError(t, err)

	_, err = DecryptSessionKey("not-base64!!!", kp.PrivatePEM)
	assert.ErrorIs(t, err, ErrInvalidSessionKey)
}

func TestGenerateKeyPair_RejectsWeakKeys(t *testing.T) {
	_, err := GenerateKeyPair(1024)
	assert.Error(t, err)
}

func TestStreamCipher_RoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte("release file contents "), 1024)

	enc, err := NewStreamCipher("00112233445566778899aabbccddeeff")
	require.NoError(t, err)

	encrypted, err := io.ReadAll(enc.Reader(bytes.NewReader(plaintext)))
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)

	dec, err := NewStreamCipher("00112233445566778899aabbccddeeff")
	require.NoError(t, err)

	decrypted, err := io.ReadAll(dec.Reader(bytes.NewReader(encrypted)))
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestStreamCipher_DeterministicPerSession(t *testing.T) {
	plaintext := []byte("same bytes, same keystream")

	a, err := NewStreamCipher("cafebabe")
	require.NoError(t, err)
	b, err := NewStreamCipher("cafebabe")
	require.NoError(t, err)

	outA, err := io.ReadAll(a.Reader(bytes.NewReader(plaintext)))
	require.NoError(t, err)
	outB, err := io.ReadAll(b.Reader(bytes.NewReader(plaintext)))
	require.NoError(t, err)

	assert.Equal(t, outA, outB)
}

func TestStreamCipher_DifferentKeysDiffer(t *testing.T) {
	plaintext := []byte("payload")

	a, err := NewStreamCipher("cafebabe")
	require.NoError(t, err)
	b, err := NewStreamCipher("deadbeef")
	require.NoError(t, err)

	outA, err := io.ReadAll(a.Reader(bytes.NewReader(plaintext)))
	require.NoError(t, err)
	outB, err := io.ReadAll(b.Reader(bytes.NewReader(plaintext)))
	require.NoError(t, err)

	assert.NotEqual(t, outA, outB)
}

func TestStreamCipher_NonHexSessionKey(t *testing.T) {
	// Older SDKs send arbitrary strings; they must still produce a working
	// cipher.
	enc, err := NewStreamCipher("not hex at all")
	require.NoError(t, err)

	plaintext := []byte("data")
	encrypted, err := io.ReadAll(enc.Reader(bytes.NewReader(plaintext)))
	require.NoError(t, err)

	dec, err := NewStreamCipher("not hex at all")
	require.NoError(t, err)
	decrypted, err := io.ReadAll(dec.Reader(bytes.NewReader(encrypted)))
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestStreamCipher_EmptySessionKey(t *testing.T) {
	_, err := NewStreamCipher("")
	assert.Error(t, err)
}

func TestStreamCipher_Writer(t *testing.T) {
	plaintext := strings.Repeat("chunked ", 512)

	enc, err := NewStreamCipher("0badc0de")
	require.NoError(t, err)

	var buf bytes.Buffer
	w := enc.Writer(&buf)
	// Write in uneven chunks to exercise keystream continuity.
	for i := 0; i < len(plaintext); i += 100 {
		end := i + 100
		if end > len(plaintext) {
			end = len(plaintext)
		}
		_, err := w.Write([]byte(plaintext[i:end]))
		require.NoError(t, err)
	}

	dec, err := NewStreamCipher("0badc0de")
	require.NoError(t, err)
	decrypted, err := io.ReadAll(dec.Reader(&buf))
	require.NoError(t, err)
	assert.Equal(t, plaintext, string(decrypted))
}
