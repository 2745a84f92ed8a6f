package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/server/models"
)

// PostgresRepository implements request storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, request *models.EncryptedTranslationRequest) error {
	query := `
		INSERT INTO requests (id, created_at, original, original_nonce, from_lang, to_lang)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		request.ID, request.CreatedAt, request.Original, request.OriginalNonce, request.FromLang, request.ToLang)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequest, error) {
	query := `
		SELECT id, created_at, original, original_nonce, from_lang, to_lang
		FROM requests WHERE id = $1
	`
	var request models.EncryptedTranslationRequest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID, &request.CreatedAt, &request.Original, &request.OriginalNonce,
		&request.FromLang, &request.ToLang,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &request, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
