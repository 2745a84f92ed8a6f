// Package responses persists translation outcomes, one per part at most.
// A stored row is either a success (translated text + nonce + target
// language) or an error (extras), never both; the variant is decided here,
// at the store boundary, and handed out as a tagged union.
package responses

import (
	"context"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/server/models"
)

// Repository is the durable store for translation responses.
//
// Get returns common.ErrNotFound when no outcome exists for the part, and
// common.ErrInvalidResponseState when the stored row matches neither
// variant shape. GetWithFormatByRequestID implements left-join semantics:
// every part of the request yields exactly one models.ResponseWithFormat.
type Repository interface {
	CreateSuccess(ctx context.Context, response *models.EncryptedSuccessResponse) error
	CreateFailure(ctx context.Context, response *models.ErrorResponse) error
	Get(ctx context.Context, partID uuid.UUID) (models.TranslationResponse, error)
	GetWithFormatByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.ResponseWithFormat, error)
	Delete(ctx context.Context, partID uuid.UUID) error
	DeleteByRequestID(ctx context.Context, requestID uuid.UUID) error
}
