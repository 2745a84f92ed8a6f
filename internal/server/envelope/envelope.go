// Package envelope converts between the plaintext and at-rest forms of the
// queue entities. All sensitive content (request originals, part content,
// translated text) passes through here before touching a repository; error
// responses carry only operational metadata and are never encrypted.
package envelope

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/etranslation/server/internal/cryptox"
	"github.com/etranslation/server/internal/server/models"
)

// Envelope seals and opens entity content under a single symmetric key.
type Envelope struct {
	key []byte
}

// New validates the key length and returns an Envelope.
func New(key []byte) (*Envelope, error) {
	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("invalid envelope key length: got %d bytes, want %d", len(key), cryptox.KeySize)
	}
	return &Envelope{key: key}, nil
}

func (e *Envelope) EncryptRequest(request *models.TranslationRequest) (*models.EncryptedTranslationRequest, error) {
	ciphertext, nonce, err := cryptox.Encrypt(request.Original, e.key)
	if err != nil {
		return nil, err
	}
	return &models.EncryptedTranslationRequest{
		ID:            request.ID,
		CreatedAt:     request.CreatedAt,
		Original:      ciphertext,
		OriginalNonce: nonce,
		FromLang:      request.FromLang,
		ToLang:        request.ToLang,
	}, nil
}

func (e *Envelope) DecryptRequest(request *models.EncryptedTranslationRequest) (*models.TranslationRequest, error) {
	original, err := cryptox.Decrypt(request.Original, request.OriginalNonce, e.key)
	if err != nil {
		return nil, err
	}
	return &models.TranslationRequest{
		ID:        request.ID,
		CreatedAt: request.CreatedAt,
		Original:  original,
		FromLang:  request.FromLang,
		ToLang:    request.ToLang,
	}, nil
}

func (e *Envelope) EncryptPart(part *models.TranslationRequestPart) (*models.EncryptedTranslationRequestPart, error) {
	ciphertext, nonce, err := cryptox.Encrypt(part.Content, e.key)
	if err != nil {
		return nil, err
	}
	return &models.EncryptedTranslationRequestPart{
		ID:               part.ID,
		RequestID:        part.RequestID,
		CreatedAt:        part.CreatedAt,
		SentAt:           part.SentAt,
		Format:           part.Format,
		Content:          ciphertext,
		Nonce:            nonce,
		SendFailureAt:    part.SendFailureAt,
		SendFailureCount: part.SendFailureCount,
	}, nil
}

func (e *Envelope) DecryptPart(part *models.EncryptedTranslationRequestPart) (*models.TranslationRequestPart, error) {
	content, err := cryptox.Decrypt(part.Content, part.Nonce, e.key)
	if err != nil {
		return nil, err
	}
	return &models.TranslationRequestPart{
		ID:               part.ID,
		RequestID:        part.RequestID,
		CreatedAt:        part.CreatedAt,
		SentAt:           part.SentAt,
		Format:           part.Format,
		Content:          content,
		SendFailureAt:    part.SendFailureAt,
		SendFailureCount: part.SendFailureCount,
	}, nil
}

// EncryptSuccess seals a translated text arriving from the authority into
// a storable success response.
func (e *Envelope) EncryptSuccess(partID uuid.UUID, createdAt time.Time, translatedText []byte, toLang string) (*models.EncryptedSuccessResponse, error) {
	ciphertext, nonce, err := cryptox.Encrypt(translatedText, e.key)
	if err != nil {
		return nil, err
	}
	return &models.EncryptedSuccessResponse{
		PartID:              partID,
		CreatedAt:           createdAt,
		TranslatedText:      ciphertext,
		TranslatedTextNonce: nonce,
		ToLang:              toLang,
	}, nil
}

// DecryptSuccessWithFormat opens a joined success row into the translatable
// chunk that the lens will inject.
func (e *Envelope) DecryptSuccessWithFormat(response *models.SuccessWithFormat) ([]byte, error) {
	return cryptox.Decrypt(response.TranslatedText, response.TranslatedTextNonce, e.key)
}
