package parts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/server/models"
)

const partColumns = `id, request_id, created_at, sent_at, format, content, nonce, send_failure_at, send_failure_count`

// PostgresRepository implements part storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, part *models.EncryptedTranslationRequestPart) error {
	query := `
		INSERT INTO request_parts (` + partColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		part.ID, part.RequestID, part.CreatedAt, part.SentAt, part.Format,
		part.Content, part.Nonce, part.SendFailureAt, part.SendFailureCount)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequestPart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+partColumns+` FROM request_parts WHERE id = $1`, id)
	return scanPart(row)
}

func (r *PostgresRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) ([]*models.EncryptedTranslationRequestPart, error) {
	query := `SELECT ` + partColumns + ` FROM request_parts WHERE request_id = $1`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.EncryptedTranslationRequestPart
	for rows.Next() {
		var part models.EncryptedTranslationRequestPart
		if err := rows.Scan(
			&part.ID, &part.RequestID, &part.CreatedAt, &part.SentAt, &part.Format,
			&part.Content, &part.Nonce, &part.SendFailureAt, &part.SendFailureCount,
		); err != nil {
			return nil, err
		}
		result = append(result, &part)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM request_parts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByRequestID(ctx context.Context, requestID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM request_parts WHERE request_id = $1`, requestID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE request_parts
		SET sent_at = $2, send_failure_at = NULL, send_failure_count = 0
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) MarkSendFailed(ctx context.Context, id uuid.UUID, sendFailureAt time.Time, sendFailureCount int) error {
	query := `
		UPDATE request_parts
		SET sent_at = NULL, send_failure_at = $2, send_failure_count = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, sendFailureAt, sendFailureCount)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// ClaimNextUnsent acquires a row lock scoped to the enclosing transaction,
// so it is only valid on a transactional handle. FOR UPDATE SKIP LOCKED
// makes concurrent claimers skip each other's rows instead of blocking,
// which is what makes the dispatcher safe to run from overlapping ticks or
// multiple processes.
func (r *PostgresRepository) ClaimNextUnsent(ctx context.Context, failureCutoff time.Time, maxFailureCount int) (*models.EncryptedTranslationRequestPart, error) {
	if !dbx.InTx(r.db) {
		return nil, common.ErrNotInTransaction
	}

	query := `
		SELECT ` + partColumns + `
		FROM request_parts
		WHERE sent_at IS NULL
		AND (send_failure_at IS NULL OR send_failure_at < $1)
		AND send_failure_count < $2
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE
		SKIP LOCKED
	`
	row := r.db.QueryRowContext(ctx, query, failureCutoff, maxFailureCount)
	return scanPart(row)
}

func scanPart(row *sql.Row) (*models.EncryptedTranslationRequestPart, error) {
	var part models.EncryptedTranslationRequestPart
	err := row.Scan(
		&part.ID, &part.RequestID, &part.CreatedAt, &part.SentAt, &part.Format,
		&part.Content, &part.Nonce, &part.SendFailureAt, &part.SendFailureCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &part, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
