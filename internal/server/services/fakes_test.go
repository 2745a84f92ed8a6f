package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/logging"
	"github.com/etranslation/server/internal/server/models"
	"github.com/etranslation/server/internal/server/repositories/parts"
	"github.com/etranslation/server/internal/server/repositories/requests"
	"github.com/etranslation/server/internal/server/repositories/responses"
	"github.com/etranslation/server/internal/server/repositories/status"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeRequestsRepo struct {
	createFn func(ctx context.Context, request *models.EncryptedTranslationRequest) error
	getFn    func(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequest, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeRequestsRepo) Create(ctx context.Context, request *models.EncryptedTranslationRequest) error {
	return f.createFn(ctx, request)
}

func (f *fakeRequestsRepo) Get(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequest, error) {
	return f.getFn(ctx, id)
}

func (f *fakeRequestsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

type fakePartsRepo struct {
	createFn            func(ctx context.Context, part *models.EncryptedTranslationRequestPart) error
	getFn               func(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequestPart, error)
	getByRequestIDFn    func(ctx context.Context, requestID uuid.UUID) ([]*models.EncryptedTranslationRequestPart, error)
	deleteFn            func(ctx context.Context, id uuid.UUID) error
	deleteByRequestIDFn func(ctx context.Context, requestID uuid.UUID) error
	markSentFn          func(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	markSendFailedFn    func(ctx context.Context, id uuid.UUID, sendFailureAt time.Time, sendFailureCount int) error
	claimNextUnsentFn   func(ctx context.Context, failureCutoff time.Time, maxFailureCount int) (*models.EncryptedTranslationRequestPart, error)
}

func (f *fakePartsRepo) Create(ctx context.Context, part *models.EncryptedTranslationRequestPart) error {
	return f.createFn(ctx, part)
}

func (f *fakePartsRepo) Get(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequestPart, error) {
	return f.getFn(ctx, id)
}

func (f *fakePartsRepo) GetByRequestID(ctx context.Context, requestID uuid.UUID) ([]*models.EncryptedTranslationRequestPart, error) {
	return f.getByRequestIDFn(ctx, requestID)
}

func (f *fakePartsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakePartsRepo) DeleteByRequestID(ctx context.Context, requestID uuid.UUID) error {
	return f.deleteByRequestIDFn(ctx, requestID)
}

func (f *fakePartsRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return f.markSentFn(ctx, id, sentAt)
}

func (f *fakePartsRepo) MarkSendFailed(ctx context.Context, id uuid.UUID, sendFailureAt time.Time, sendFailureCount int) error {
	return f.markSendFailedFn(ctx, id, sendFailureAt, sendFailureCount)
}

func (f *fakePartsRepo) ClaimNextUnsent(ctx context.Context, failureCutoff time.Time, maxFailureCount int) (*models.EncryptedTranslationRequestPart, error) {
	return f.claimNextUnsentFn(ctx, failureCutoff, maxFailureCount)
}

type fakeResponsesRepo struct {
	createSuccessFn            func(ctx context.Context, response *models.EncryptedSuccessResponse) error
	createFailureFn            func(ctx context.Context, response *models.ErrorResponse) error
	getFn                      func(ctx context.Context, partID uuid.UUID) (models.TranslationResponse, error)
	getWithFormatByRequestIDFn func(ctx context.Context, requestID uuid.UUID) ([]models.ResponseWithFormat, error)
	deleteFn                   func(ctx context.Context, partID uuid.UUID) error
	deleteByRequestIDFn        func(ctx context.Context, requestID uuid.UUID) error
}

func (f *fakeResponsesRepo) CreateSuccess(ctx context.Context, response *models.EncryptedSuccessResponse) error {
	return f.createSuccessFn(ctx, response)
}

func (f *fakeResponsesRepo) CreateFailure(ctx context.Context, response *models.ErrorResponse) error {
	return f.createFailureFn(ctx, response)
}

func (f *fakeResponsesRepo) Get(ctx context.Context, partID uuid.UUID) (models.TranslationResponse, error) {
	return f.getFn(ctx, partID)
}

func (f *fakeResponsesRepo) GetWithFormatByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.ResponseWithFormat, error) {
	return f.getWithFormatByRequestIDFn(ctx, requestID)
}

func (f *fakeResponsesRepo) Delete(ctx context.Context, partID uuid.UUID) error {
	return f.deleteFn(ctx, partID)
}

func (f *fakeResponsesRepo) DeleteByRequestID(ctx context.Context, requestID uuid.UUID) error {
	return f.deleteByRequestIDFn(ctx, requestID)
}

type fakeStatusRepo struct {
	viewsByRequestIDFn func(ctx context.Context, requestID uuid.UUID) ([]models.StatusView, error)
}

func (f *fakeStatusRepo) ViewsByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.StatusView, error) {
	return f.viewsByRequestIDFn(ctx, requestID)
}

// fakeRepoManager hands out the same fake repositories regardless of the
// database handle, which is exactly what the services under test need.
type fakeRepoManager struct {
	requests  *fakeRequestsRepo
	parts     *fakePartsRepo
	responses *fakeResponsesRepo
	status    *fakeStatusRepo
}

func (m *fakeRepoManager) Requests(db dbx.DBTX) requests.Repository   { return m.requests }
func (m *fakeRepoManager) Parts(db dbx.DBTX) parts.Repository         { return m.parts }
func (m *fakeRepoManager) Responses(db dbx.DBTX) responses.Repository { return m.responses }
func (m *fakeRepoManager) Status(db dbx.DBTX) status.Repository       { return m.status }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}
