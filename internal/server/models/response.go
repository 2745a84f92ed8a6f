package models

import (
	"time"

	"github.com/google/uuid"
)

// TranslationResponse is the outcome recorded for one part: either a
// success carrying the translated text or an error carrying free-form
// attributes from the authority, never both. The variant is decided once at
// the store boundary; rows matching neither shape surface
// common.ErrInvalidResponseState instead of a value.
type TranslationResponse interface {
	translationResponse()
}

// EncryptedSuccessResponse is a stored success outcome. TranslatedText is
// sealed under TranslatedTextNonce.
type EncryptedSuccessResponse struct {
	PartID              uuid.UUID
	CreatedAt           time.Time
	TranslatedText      []byte
	TranslatedTextNonce []byte
	ToLang              string
}

// ErrorResponse is a stored error outcome. Extras carries the authority's
// error attributes (code, message); it holds no document content and is
// therefore stored unencrypted.
type ErrorResponse struct {
	PartID    uuid.UUID
	CreatedAt time.Time
	Extras    map[string]string
}

func (*EncryptedSuccessResponse) translationResponse() {}
func (*ErrorResponse) translationResponse()            {}

// ResponseWithFormat is the per-part response state produced by the
// left join of parts against responses: every part yields exactly one
// variant, NoResponse when no outcome has arrived yet.
type ResponseWithFormat interface {
	responseWithFormat()
}

// SuccessWithFormat pairs an encrypted translated text with the format tag
// of its part, ready for decryption and lens injection.
type SuccessWithFormat struct {
	PartID              uuid.UUID
	Format              string
	TranslatedText      []byte
	TranslatedTextNonce []byte
}

// ErrorWithFormat reports that a part's translation failed.
type ErrorWithFormat struct {
	PartID uuid.UUID
	Extras map[string]string
}

// NoResponse reports that a part has no outcome yet.
type NoResponse struct {
	PartID uuid.UUID
}

func (*SuccessWithFormat) responseWithFormat() {}
func (*ErrorWithFormat) responseWithFormat()   {}
func (*NoResponse) responseWithFormat()        {}
