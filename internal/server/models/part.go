package models

import (
	"time"

	"github.com/google/uuid"
)

// TranslationRequestPart is the unit of dispatch: one translatable chunk
// extracted from a request. SentAt is nil until the part has been handed to
// the external authority; SendFailureAt records the most recent failed
// attempt. A successful send clears the failure fields, so SentAt and
// SendFailureAt are never both set.
type TranslationRequestPart struct {
	ID               uuid.UUID
	RequestID        uuid.UUID
	CreatedAt        time.Time
	SentAt           *time.Time
	Format           string
	Content          []byte
	SendFailureAt    *time.Time
	SendFailureCount int
}

// EncryptedTranslationRequestPart is the at-rest form of
// TranslationRequestPart. Content holds the ciphertext sealed under Nonce.
type EncryptedTranslationRequestPart struct {
	ID               uuid.UUID
	RequestID        uuid.UUID
	CreatedAt        time.Time
	SentAt           *time.Time
	Format           string
	Content          []byte
	Nonce            []byte
	SendFailureAt    *time.Time
	SendFailureCount int
}
