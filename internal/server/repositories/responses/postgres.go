package responses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/server/models"
)

// PostgresRepository implements response storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateSuccess(ctx context.Context, response *models.EncryptedSuccessResponse) error {
	query := `
		INSERT INTO responses (part_id, created_at, translated_text, translated_text_nonce, to_lang, extras)
		VALUES ($1, $2, $3, $4, $5, NULL)
	`
	_, err := r.db.ExecContext(ctx, query,
		response.PartID, response.CreatedAt, response.TranslatedText,
		response.TranslatedTextNonce, response.ToLang)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateFailure(ctx context.Context, response *models.ErrorResponse) error {
	extras, err := json.Marshal(response.Extras)
	if err != nil {
		return fmt.Errorf("extras marshal error: %w", err)
	}

	query := `
		INSERT INTO responses (part_id, created_at, translated_text, translated_text_nonce, to_lang, extras)
		VALUES ($1, $2, NULL, NULL, NULL, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, response.PartID, response.CreatedAt, extras); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, partID uuid.UUID) (models.TranslationResponse, error) {
	query := `
		SELECT part_id, created_at, translated_text, translated_text_nonce, to_lang, extras
		FROM responses WHERE part_id = $1
	`
	var row responseRow
	err := r.db.QueryRowContext(ctx, query, partID).Scan(
		&row.partID, &row.createdAt, &row.translatedText, &row.translatedTextNonce,
		&row.toLang, &row.extras,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row.asResponse()
}

func (r *PostgresRepository) GetWithFormatByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.ResponseWithFormat, error) {
	query := `
		SELECT
			p.id part_id,
			p.format,
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

	var result []models.ResponseWithFormat
	for rows.Next() {
		var (
			partID                              uuid.UUID
			format                              string
			translatedText, translatedTextNonce []byte
			extras                              []byte
		)
		if err := rows.Scan(&partID, &format, &translatedText, &translatedTextNonce, &extras); err != nil {
			return nil, err
		}

		variant, err := classifyWithFormat(partID, format, translatedText, translatedTextNonce, extras)
		if err != nil {
			return nil, err
		}
		result = append(result, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, partID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM responses WHERE part_id = $1`, partID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByRequestID(ctx context.Context, requestID uuid.UUID) error {
	query := `
		DELETE FROM responses r
		USING request_parts p
		WHERE r.part_id = p.id AND p.request_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, requestID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type responseRow struct {
	partID              uuid.UUID
	createdAt           sql.NullTime
	translatedText      []byte
	translatedTextNonce []byte
	toLang              sql.NullString
	extras              []byte
}

// asResponse decides the variant of a stored row. Exactly one of the
// success column group and extras must be populated; anything else is
// corruption and surfaces as ErrInvalidResponseState.
func (row *responseRow) asResponse() (models.TranslationResponse, error) {
	success := row.translatedText != nil && row.translatedTextNonce != nil && row.toLang.Valid
	failure := row.extras != nil

	switch {
	case success && !failure:
		return &models.EncryptedSuccessResponse{
			PartID:              row.partID,
			CreatedAt:           row.createdAt.Time,
			TranslatedText:      row.translatedText,
			TranslatedTextNonce: row.translatedTextNonce,
			ToLang:              row.toLang.String,
		}, nil
	case failure && row.translatedText == nil && row.translatedTextNonce == nil && !row.toLang.Valid:
		extras, err := unmarshalExtras(row.extras)
		if err != nil {
			return nil, err
		}
		return &models.ErrorResponse{
			PartID:    row.partID,
			CreatedAt: row.createdAt.Time,
			Extras:    extras,
		}, nil
	default:
		return nil, fmt.Errorf("%w: response columns not mutually exclusive for part %s",
			common.ErrInvalidResponseState, row.partID)
	}
}

func classifyWithFormat(partID uuid.UUID, format string, translatedText, translatedTextNonce, extras []byte) (models.ResponseWithFormat, error) {
	switch {
	case translatedText != nil && translatedTextNonce != nil && extras == nil:
		return &models.SuccessWithFormat{
			PartID:              partID,
			Format:              format,
			TranslatedText:      translatedText,
			TranslatedTextNonce: translatedTextNonce,
		}, nil
	case translatedText == nil && translatedTextNonce == nil && extras != nil:
		parsed, err := unmarshalExtras(extras)
		if err != nil {
			return nil, err
		}
		return &models.ErrorWithFormat{PartID: partID, Extras: parsed}, nil
	case translatedText == nil && translatedTextNonce == nil && extras == nil:
		return &models.NoResponse{PartID: partID}, nil
	default:
		return nil, fmt.Errorf("%w: response columns not mutually exclusive for part %s",
			common.ErrInvalidResponseState, partID)
	}
}

func unmarshalExtras(raw []byte) (map[string]string, error) {
	var extras map[string]string
	if err := json.Unmarshal(raw, &extras); err != nil {
		return nil, fmt.Errorf("%w: malformed extras: %v", common.ErrInvalidResponseState, err)
	}
	return extras, nil
}
