// Package requests persists translation requests in their encrypted form.
package requests

import (
	"context"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/server/models"
)

// Repository is the durable store for translation requests. Get returns
// common.ErrNotFound when no row exists.
type Repository interface {
	Create(ctx context.Context, request *models.EncryptedTranslationRequest) error
	Get(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
