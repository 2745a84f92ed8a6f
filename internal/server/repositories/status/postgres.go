package status

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/server/models"
)

// PostgresRepository implements the status view over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ViewsByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.StatusView, error) {
	query := `
		SELECT
			p.id part_id,
			p.created_at,
			p.send_failure_count,
			p.sent_at,
			r.translated_text,
			r.translated_text_nonce,
			r.extras
		FROM request_parts p
		LEFT JOIN responses r
		ON p.id = r.part_id
		WHERE p.request_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.StatusView
	for rows.Next() {
		var (
			view                                models.StatusView
			translatedText, translatedTextNonce []byte
			extras                              []byte
		)
		if err := rows.Scan(
			&view.PartID, &view.CreatedAt, &view.SendFailureCount, &view.SentAt,
			&translatedText, &translatedTextNonce, &extras,
		); err != nil {
			return nil, err
		}

		view.ResponseStatus = classify(translatedText, translatedTextNonce, extras)
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// classify maps the joined response columns to a per-part response status.
// An unreadable shape becomes ResponseInvalid rather than an error so that
// corruption of one row is visible in the aggregate status instead of
// aborting the whole status query.
func classify(translatedText, translatedTextNonce, extras []byte) models.ResponseStatus {
	switch {
	case translatedText != nil && translatedTextNonce != nil && extras == nil:
		return models.ResponseSuccess
	case translatedText == nil && translatedTextNonce == nil && extras != nil:
		return models.ResponseError
	case translatedText == nil && translatedTextNonce == nil && extras == nil:
		return models.ResponseNotFound
	default:
		return models.ResponseInvalid
	}
}
