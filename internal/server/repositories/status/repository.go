// Package status provides a read-only view of the data relevant for status
// reporting: one StatusView per part of a request.
package status

import (
	"context"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/server/models"
)

// Repository queries per-part status views. The result is empty (not an
// error) when the request has no parts.
type Repository interface {
	ViewsByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.StatusView, error)
}
