// Package services implements the request lifecycle on top of the
// repositories: submission, status aggregation, document reconstruction,
// deletion, and ingestion of authority callbacks.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/logging"
	"github.com/etranslation/server/internal/server/envelope"
	"github.com/etranslation/server/internal/server/lens"
	"github.com/etranslation/server/internal/server/models"
	"github.com/etranslation/server/internal/server/repositories/repomanager"
)

// DocumentService owns the lifecycle of a translation request.
type DocumentService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	envelope *envelope.Envelope
	lens     lens.Lens
	logger   logging.Logger

	// seams for tests
	now   func() time.Time
	newID func() uuid.UUID
}

func NewDocumentService(db *sql.DB, repos repomanager.RepositoryManager, env *envelope.Envelope, l lens.Lens, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:       db,
		repos:    repos,
		envelope: env,
		lens:     l,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// Create extracts the translatable parts of document, encrypts everything,
// and stores the request together with its parts in one transaction.
func (s *DocumentService) Create(ctx context.Context, document []byte, fromLang, toLang string) (uuid.UUID, error) {
	translatables, err := s.lens.Extract(document)
	if err != nil {
		return uuid.Nil, fmt.Errorf("extraction error: %w", err)
	}

	request := &models.TranslationRequest{
		ID:        s.newID(),
		CreatedAt: s.now(),
		Original:  document,
		FromLang:  fromLang,
		ToLang:    toLang,
	}

	encryptedRequest, err := s.envelope.EncryptRequest(request)
	if err != nil {
		return uuid.Nil, err
	}

	encryptedParts := make([]*models.EncryptedTranslationRequestPart, 0, len(translatables))
	for _, translatable := range translatables {
		part := &models.TranslationRequestPart{
			ID:        s.newID(),
			RequestID: request.ID,
			CreatedAt: s.now(),
			Format:    translatable.Format,
			Content:   translatable.Content,
		}
		encryptedPart, err := s.envelope.EncryptPart(part)
		if err != nil {
			return uuid.Nil, err
		}
		encryptedParts = append(encryptedParts, encryptedPart)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Requests(tx).Create(ctx, encryptedRequest); err != nil {
			return err
		}
		partsRepo := s.repos.Parts(tx)
		for _, encryptedPart := range encryptedParts {
			if err := partsRepo.Create(ctx, encryptedPart); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info(ctx, "created translation request",
		"requestId", request.ID, "parts", len(encryptedParts), "from", fromLang, "to", toLang)

	return request.ID, nil
}

// Status derives the request-level status from all of its parts.
// Returns common.ErrNotFound when the request has no parts at all.
func (s *DocumentService) Status(ctx context.Context, requestID uuid.UUID) (*models.TranslationStatus, error) {
	views, err := s.repos.Status(s.db).ViewsByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, common.ErrNotFound
	}

	status, fallback := deriveStatus(views)
	if fallback {
		s.logger.Warn(ctx, "status derivation hit fallback branch",
			"requestId", requestID, "status", status)
	}

	return &models.TranslationStatus{Status: status, At: lastActivity(views)}, nil
}

// Document reconstructs the translated document once every part has a
// successful response. The error return distinguishes: no such request, no
// parts, a failed part (TranslationFailedError), responses still pending
// (IncompleteError), an unreadable response row, and lens injection failures.
func (s *DocumentService) Document(ctx context.Context, requestID uuid.UUID) ([]byte, error) {
	encryptedRequest, err := s.repos.Requests(s.db).Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	request, err := s.envelope.DecryptRequest(encryptedRequest)
	if err != nil {
		return nil, err
	}

	responses, err := s.repos.Responses(s.db).GetWithFormatByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, common.ErrNoRequestParts
	}

	var (
		successes  []*models.SuccessWithFormat
		incomplete int
	)
	for _, response := range responses {
		switch r := response.(type) {
		case *models.SuccessWithFormat:
			successes = append(successes, r)
		case *models.ErrorWithFormat:
			return nil, &TranslationFailedError{Extras: r.Extras}
		case *models.NoResponse:
			incomplete++
		default:
			return nil, fmt.Errorf("unexpected response variant %T", response)
		}
	}
	if incomplete > 0 {
		return nil, &IncompleteError{Complete: len(successes), Incomplete: incomplete}
	}

	translated := make([]lens.Translatable, 0, len(successes))
	for _, success := range successes {
		content, err := s.envelope.DecryptSuccessWithFormat(success)
		if err != nil {
			return nil, err
		}
		translated = append(translated, lens.Translatable{Format: success.Format, Content: content})
	}

	document, err := s.lens.Inject(request.Original, translated, request.ToLang)
	if err != nil {
		return nil, fmt.Errorf("injection error: %w", err)
	}
	return document, nil
}

// Delete removes a request with all of its parts and responses. Deletion
// order respects foreign-key ownership: responses, then parts, then the
// request, all in one transaction.
func (s *DocumentService) Delete(ctx context.Context, requestID uuid.UUID) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Responses(tx).DeleteByRequestID(ctx, requestID); err != nil {
			return err
		}
		if err := s.repos.Parts(tx).DeleteByRequestID(ctx, requestID); err != nil {
			return err
		}
		return s.repos.Requests(tx).Delete(ctx, requestID)
	})
}
