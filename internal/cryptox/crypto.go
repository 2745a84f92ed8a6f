// Package cryptox implements the symmetric envelope protecting document
// content at rest. Content is sealed with AES-256-GCM under a single
// externally supplied key; every encryption call generates a fresh random
// nonce, and the (ciphertext, nonce) pair is persisted together.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KeySize is the required envelope key length (AES-256).
const KeySize = 32

// ErrDecryptionFailed is returned when authentication fails during
// decryption or the key/nonce are malformed. Callers must treat it as
// fatal for the record being read and never fall back to partial output.
var ErrDecryptionFailed = errors.New("decryption failed")

// Encrypt seals plaintext with AES-GCM under key and returns the ciphertext
// together with the randomly generated nonce. A new nonce is drawn from
// crypto/rand on every call; reusing a nonce under the same key would break
// the scheme, so callers must always persist the pair returned here.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Decrypt opens a ciphertext produced by Encrypt. It returns
// ErrDecryptionFailed if the ciphertext was tampered with, the key is wrong,
// or the nonce does not match.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d", ErrDecryptionFailed, len(nonce))
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// DeriveKey stretches a passphrase into a KeySize-byte envelope key with
// argon2id. The salt must stay constant across restarts or previously
// written rows become unreadable.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// ParseKeyHex decodes a hex-encoded envelope key and validates its length.
func ParseKeyHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length: got %d bytes, want %d", len(key), KeySize)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return aesgcm, nil
}
