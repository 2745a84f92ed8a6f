// Package models contains the entities of the translation work-queue:
// requests, their dispatchable parts, per-part responses, and the derived
// status views. Entities exist in a plaintext and an encrypted (at-rest)
// form; conversion between the two happens in the envelope service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// TranslationRequest is one submitted document awaiting translation.
// It is immutable after creation except for deletion.
type TranslationRequest struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Original  []byte
	FromLang  string
	ToLang    string
}

// EncryptedTranslationRequest is the at-rest form of TranslationRequest.
// Original holds the ciphertext sealed under OriginalNonce.
type EncryptedTranslationRequest struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	Original      []byte
	OriginalNonce []byte
	FromLang      string
	ToLang        string
}
