package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/logging"
	"github.com/etranslation/server/internal/server/envelope"
	"github.com/etranslation/server/internal/server/models"
	"github.com/etranslation/server/internal/server/repositories/repomanager"
)

// CallbackService records the authority's asynchronous answers. The
// external reference carried by both callbacks is the part id. Responses
// are immutable once inserted.
type CallbackService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	envelope *envelope.Envelope
	logger   logging.Logger

	now func() time.Time
}

func NewCallbackService(db *sql.DB, repos repomanager.RepositoryManager, env *envelope.Envelope, logger logging.Logger) *CallbackService {
	return &CallbackService{
		db:       db,
		repos:    repos,
		envelope: env,
		logger:   logger,
		now:      time.Now,
	}
}

// Success encrypts and stores a translated text for the given part.
func (s *CallbackService) Success(ctx context.Context, partID uuid.UUID, toLang string, translatedText []byte) error {
	response, err := s.envelope.EncryptSuccess(partID, s.now(), translatedText, toLang)
	if err != nil {
		return err
	}
	if err := s.repos.Responses(s.db).CreateSuccess(ctx, response); err != nil {
		return err
	}
	s.logger.Info(ctx, "recorded translation success", "partId", partID, "to", toLang)
	return nil
}

// Failure stores an error outcome for the given part. The error attributes
// contain no document content and are stored as-is.
func (s *CallbackService) Failure(ctx context.Context, partID uuid.UUID, errorCode, errorMessage string) error {
	response := &models.ErrorResponse{
		PartID:    partID,
		CreatedAt: s.now(),
		Extras: map[string]string{
			"error-code":    errorCode,
			"error-message": errorMessage,
		},
	}
	if err := s.repos.Responses(s.db).CreateFailure(ctx, response); err != nil {
		return err
	}
	s.logger.Warn(ctx, "recorded translation error", "partId", partID, "errorCode", errorCode)
	return nil
}
