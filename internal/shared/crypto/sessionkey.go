package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// ErrInvalidSessionKey is returned for any session key blob that cannot be
// decrypted with the team's private key. Malformed base64, wrong keypair, and
// oversized ciphertexts all collapse into this one error so the HTTP layer
// can map them to a single client-visible status.
var ErrInvalidSessionKey = errors.New("invalid session key")

// DecryptSessionKey decrypts a client-supplied session key blob using the
// team's RSA private key. The blob is base64 as transmitted over the wire.
// The decrypted plaintext is the client's one-time symmetric key, normally a
// hex string; it is returned as-is and never persisted.
func DecryptSessionKey(ciphertextB64 string, privateKeyPEM string) (string, error) {
	priv, err := ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", ErrInvalidSessionKey
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidSessionKey
	}

	return string(plaintext), nil
}

// ParsePrivateKey parses a PEM-encoded RSA private key in PKCS#8 or PKCS#1
// form.
func ParsePrivateKey(privateKeyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("not an RSA private key")
		}
		return rsaKey, nil
	}

	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// ParsePublicKey parses a PEM-encoded RSA public key.
func ParsePublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return rsaKey, nil
}

// EncryptSessionKey encrypts a session key with a team public key. The server
// never calls this on the request path; client SDKs and the test suite do.
func EncryptSessionKey(sessionKey string, publicKeyPEM string) (string, error) {
	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return "", err
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, []byte(sessionKey), nil)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
