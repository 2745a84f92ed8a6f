package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/cryptox"
	"github.com/etranslation/server/internal/server/envelope"
	"github.com/etranslation/server/internal/server/lens"
	"github.com/etranslation/server/internal/server/models"
)

func newTestEnvelope(t *testing.T) *envelope.Envelope {
	t.Helper()
	key := make([]byte, cryptox.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	e, err := envelope.New(key)
	require.NoError(t, err)
	return e
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDocumentService(db *sql.DB, repos *fakeRepoManager, env *envelope.Envelope) *DocumentService {
	return NewDocumentService(db, repos, env, lens.NewTextLens(), discardLogger())
}

func TestDocumentService_Create(t *testing.T) {
	db, mock := newMockDB(t)
	env := newTestEnvelope(t)

	var (
		storedRequest *models.EncryptedTranslationRequest
		storedParts   []*models.EncryptedTranslationRequestPart
	)
	repos := &fakeRepoManager{
		requests: &fakeRequestsRepo{
			createFn: func(ctx context.Context, request *models.EncryptedTranslationRequest) error {
				storedRequest = request
				return nil
			},
		},
		parts: &fakePartsRepo{
			createFn: func(ctx context.Context, part *models.EncryptedTranslationRequestPart) error {
				storedParts = append(storedParts, part)
				return nil
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	s := newDocumentService(db, repos, env)

	document := []byte("hallo welt")
	id, err := s.Create(context.Background(), document, "DE", "EN")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.NotNil(t, storedRequest)
	assert.Equal(t, id, storedRequest.ID)
	assert.Equal(t, "DE", storedRequest.FromLang)
	assert.Equal(t, "EN", storedRequest.ToLang)
	assert.NotEqual(t, document, storedRequest.Original)

	require.Len(t, storedParts, 1)
	assert.Equal(t, id, storedParts[0].RequestID)
	assert.Equal(t, "txt", storedParts[0].Format)
	assert.NotEqual(t, document, storedParts[0].Content)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentService_Create_RollsBackOnPartError(t *testing.T) {
	db, mock := newMockDB(t)
	env := newTestEnvelope(t)

	repos := &fakeRepoManager{
		requests: &fakeRequestsRepo{
			createFn: func(ctx context.Context, request *models.EncryptedTranslationRequest) error {
				return nil
			},
		},
		parts: &fakePartsRepo{
			createFn: func(ctx context.Context, part *models.EncryptedTranslationRequestPart) error {
				return errors.New("insert failed")
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newDocumentService(db, repos, env)

	_, err := s.Create(context.Background(), []byte("hallo"), "DE", "EN")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentService_Status(t *testing.T) {
	db, _ := newMockDB(t)
	env := newTestEnvelope(t)

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	sent := created.Add(time.Hour)

	t.Run("no parts means not found", func(t *testing.T) {
		repos := &fakeRepoManager{
			status: &fakeStatusRepo{
				viewsByRequestIDFn: func(ctx context.Context, requestID uuid.UUID) ([]models.StatusView, error) {
					return nil, nil
				},
			},
		}
		s := newDocumentService(db, repos, env)

		_, err := s.Status(context.Background(), uuid.New())
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("derives status and last activity", func(t *testing.T) {
		repos := &fakeRepoManager{
			status: &fakeStatusRepo{
				viewsByRequestIDFn: func(ctx context.Context, requestID uuid.UUID) ([]models.StatusView, error) {
					return []models.StatusView{
						{CreatedAt: created, SentAt: &sent, ResponseStatus: models.ResponseSuccess},
						{CreatedAt: created, SentAt: &sent, ResponseStatus: models.ResponseSuccess},
					}, nil
				},
			},
		}
		s := newDocumentService(db, repos, env)

		got, err := s.Status(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, models.StatusTranslated, got.Status)
		assert.Equal(t, sent, got.At)
	})
}

func TestDocumentService_Document(t *testing.T) {
	db, _ := newMockDB(t)
	env := newTestEnvelope(t)

	requestID := uuid.New()
	partID := uuid.New()
	original := []byte("hallo welt")

	encryptedRequest, err := env.EncryptRequest(&models.TranslationRequest{
		ID:       requestID,
		Original: original,
		FromLang: "DE",
		ToLang:   "EN",
	})
	require.NoError(t, err)

	getRequest := func(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequest, error) {
		require.Equal(t, requestID, id)
		return encryptedRequest, nil
	}

	t.Run("reconstructs the translated document", func(t *testing.T) {
		success, err := env.EncryptSuccess(partID, time.Now(), []byte("hello world"), "EN")
		require.NoError(t, err)

		repos := &fakeRepoManager{
			requests: &fakeRequestsRepo{getFn: getRequest},
			responses: &fakeResponsesRepo{
				getWithFormatByRequestIDFn: func(ctx context.Context, id uuid.UUID) ([]models.ResponseWithFormat, error) {
					return []models.ResponseWithFormat{
						&models.SuccessWithFormat{
							PartID:              partID,
							Format:              "txt",
							TranslatedText:      success.TranslatedText,
							TranslatedTextNonce: success.TranslatedTextNonce,
						},
					}, nil
				},
			},
		}
		s := newDocumentService(db, repos, env)

		document, err := s.Document(context.Background(), requestID)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), document)
	})

	t.Run("unknown request", func(t *testing.T) {
		repos := &fakeRepoManager{
			requests: &fakeRequestsRepo{
				getFn: func(ctx context.Context, id uuid.UUID) (*models.EncryptedTranslationRequest, error) {
					return nil, common.ErrNotFound
				},
			},
		}
		s := newDocumentService(db, repos, env)

		_, err := s.Document(context.Background(), requestID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("request without parts", func(t *testing.T) {
		repos := &fakeRepoManager{
			requests: &fakeRequestsRepo{getFn: getRequest},
			responses: &fakeResponsesRepo{
				getWithFormatByRequestIDFn: func(ctx context.Context, id uuid.UUID) ([]models.ResponseWithFormat, error) {
					return nil, nil
				},
			},
		}
		s := newDocumentService(db, repos, env)

		_, err := s.Document(context.Background(), requestID)
		assert.ErrorIs(t, err, common.ErrNoRequestParts)
	})

	t.Run("failed part surfaces the authority's attributes", func(t *testing.T) {
		repos := &fakeRepoManager{
			requests: &fakeRequestsRepo{getFn: getRequest},
			responses: &fakeResponsesRepo{
				getWithFormatByRequestIDFn: func(ctx context.Context, id uuid.UUID) ([]models.ResponseWithFormat, error) {
					return []models.ResponseWithFormat{
						&models.ErrorWithFormat{PartID: partID, Extras: map[string]string{"error-code": "-20028"}},
					}, nil
				},
			},
		}
		s := newDocumentService(db, repos, env)

		_, err := s.Document(context.Background(), requestID)
		var failed *TranslationFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, "-20028", failed.Extras["error-code"])
	})

	t.Run("pending parts yield an incomplete error", func(t *testing.T) {
		success, err := env.EncryptSuccess(partID, time.Now(), []byte("hello"), "EN")
		require.NoError(t, err)

		repos := &fakeRepoManager{
			requests: &fakeRequestsRepo{getFn: getRequest},
			responses: &fakeResponsesRepo{
				getWithFormatByRequestIDFn: func(ctx context.Context, id uuid.UUID) ([]models.ResponseWithFormat, error) {
					return []models.ResponseWithFormat{
						&models.SuccessWithFormat{
							PartID:              partID,
							Format:              "txt",
							TranslatedText:      success.TranslatedText,
							TranslatedTextNonce: success.TranslatedTextNonce,
						},
						&models.NoResponse{PartID: uuid.New()},
					}, nil
				},
			},
		}
		s := newDocumentService(db, repos, env)

		_, err = s.Document(context.Background(), requestID)
		var incomplete *IncompleteError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, 1, incomplete.Complete)
		assert.Equal(t, 1, incomplete.Incomplete)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	env := newTestEnvelope(t)

	requestID := uuid.New()
	var order []string
	repos := &fakeRepoManager{
		requests: &fakeRequestsRepo{
			deleteFn: func(ctx context.Context, id uuid.UUID) error {
				order = append(order, "request")
				return nil
			},
		},
		parts: &fakePartsRepo{
			deleteByRequestIDFn: func(ctx context.Context, id uuid.UUID) error {
				order = append(order, "parts")
				return nil
			},
		},
		responses: &fakeResponsesRepo{
			deleteByRequestIDFn: func(ctx context.Context, id uuid.UUID) error {
				order = append(order, "responses")
				return nil
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	s := newDocumentService(db, repos, env)

	require.NoError(t, s.Delete(context.Background(), requestID))
	assert.Equal(t, []string{"responses", "parts", "request"}, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}
