package models

import (
	"time"

	"github.com/google/uuid"
)

// ResponseStatus classifies the response state of a single part as seen by
// the status view. Unlike the response store, an unreadable row is reported
// as ResponseInvalid rather than an error, so one corrupt row surfaces in
// the aggregate status instead of aborting the whole query.
type ResponseStatus int

const (
	ResponseSuccess ResponseStatus = iota
	ResponseError
	ResponseNotFound
	ResponseInvalid
)

func (s ResponseStatus) String() string {
	switch s {
	case ResponseSuccess:
		return "success"
	case ResponseError:
		return "error"
	case ResponseNotFound:
		return "not_found"
	case ResponseInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// StatusView is the per-part slice of state the status aggregator consumes.
type StatusView struct {
	PartID           uuid.UUID
	CreatedAt        time.Time
	SendFailureCount int
	SentAt           *time.Time
	ResponseStatus   ResponseStatus
}

// RequestStatus is the job-level status derived from all parts of a request.
type RequestStatus string

const (
	StatusUntranslated     RequestStatus = "UNTRANSLATED"
	StatusSent             RequestStatus = "SENT"
	StatusTranslated       RequestStatus = "TRANSLATED"
	StatusTranslationError RequestStatus = "TRANSLATION_ERROR"
	StatusSendError        RequestStatus = "SEND_ERROR"
)

// TranslationStatus is the aggregate answer for one request: its derived
// status and the last-activity timestamp (max of sentAt falling back to
// createdAt across parts).
type TranslationStatus struct {
	Status RequestStatus
	At     time.Time
}
