// Package parts persists translation request parts and implements the
// work-queue claim over them.
package parts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/server/models"
)

// Repository is the durable store for request parts. Get and ClaimNextUnsent
// return common.ErrNotFound when no matching row exists.
type Repository interface {
	Create(ctx context.Context, part *models.EncryptedTranslationRequestPart) error
	Get(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequestPart, error)
	GetByRequestID(ctx context.Context, requestID uuid.UUID) ([]*models.EncryptedTranslationRequestPart, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRequestID(ctx context.Context, requestID uuid.UUID) error

	// MarkSent records a successful dispatch and resets the failure fields.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// MarkSendFailed records a failed dispatch attempt.
	MarkSendFailed(ctx context.Context, id uuid.UUID, sendFailureAt time.Time, sendFailureCount int) error

	// ClaimNextUnsent selects the oldest part that is unsent, outside its
	// failure cooldown (sendFailureAt < failureCutoff, i.e. cutoff =
	// now - cooldown) and under the failure ceiling, and locks the row for
	// the duration of the enclosing transaction. Rows locked by concurrent
	// claimers are skipped, not waited on. Calling it on a handle that is
	// not a transaction returns common.ErrNotInTransaction.
	ClaimNextUnsent(ctx context.Context, failureCutoff time.Time, maxFailureCount int) (*models.EncryptedTranslationRequestPart, error)
}
