package services

import (
	"time"

	"github.com/etranslation/server/internal/server/models"
)

// deriveStatus folds the per-part views into one request-level status.
// Cases are checked in order; the first match wins:
//
//  1. any part unsent with recorded failures  -> SEND_ERROR
//  2. any part unsent (no failures)           -> UNTRANSLATED
//  3. all parts answered successfully         -> TRANSLATED
//  4. any part answered with an error or an
//     unreadable response row                 -> TRANSLATION_ERROR
//  5. all parts sent, none answered           -> SENT
//
// The final fallback to UNTRANSLATED is kept for compatibility with
// combinations not covered above (e.g. some parts answered, some still
// pending); the caller flags when it triggers so unanticipated state
// combinations stay visible.
func deriveStatus(views []models.StatusView) (status models.RequestStatus, fallback bool) {
	switch {
	case anyView(views, func(v models.StatusView) bool {
		return v.SentAt == nil && v.SendFailureCount > 0
	}):
		return models.StatusSendError, false

	case anyView(views, func(v models.StatusView) bool {
		return v.SentAt == nil
	}):
		return models.StatusUntranslated, false

	case allViews(views, func(v models.StatusView) bool {
		return v.ResponseStatus == models.ResponseSuccess
	}):
		return models.StatusTranslated, false

	case anyView(views, func(v models.StatusView) bool {
		return v.ResponseStatus == models.ResponseError || v.ResponseStatus == models.ResponseInvalid
	}):
		return models.StatusTranslationError, false

	case allViews(views, func(v models.StatusView) bool {
		return v.SentAt != nil && v.ResponseStatus == models.ResponseNotFound
	}):
		return models.StatusSent, false

	default:
		return models.StatusUntranslated, true
	}
}

// lastActivity is the request's last-activity timestamp: the maximum of
// each part's sentAt, falling back to its createdAt while unsent.
func lastActivity(views []models.StatusView) time.Time {
	var at time.Time
	for _, v := range views {
		t := v.CreatedAt
		if v.SentAt != nil {
			t = *v.SentAt
		}
		if t.After(at) {
			at = t
		}
	}
	return at
}

func anyView(views []models.StatusView, pred func(models.StatusView) bool) bool {
	for _, v := range views {
		if pred(v) {
			return true
		}
	}
	return false
}

func allViews(views []models.StatusView, pred func(models.StatusView) bool) bool {
	for _, v := range views {
		if !pred(v) {
			return false
		}
	}
	return true
}
