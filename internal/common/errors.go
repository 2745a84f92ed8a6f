// Package common defines shared sentinel errors used across the server.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrNotInTransaction = errors.New("not in transaction")

	// ErrInvalidResponseState signals that a stored response row matches
	// neither the success nor the error column shape. It indicates data
	// corruption and is never coerced to a default.
	ErrInvalidResponseState = errors.New("invalid response state")

	// ErrSendFailed marks any failure to deliver a part to the external
	// authority, regardless of cause.
	ErrSendFailed = errors.New("send failed")

	// ErrNoRequestParts is returned when a request exists but has no parts.
	ErrNoRequestParts = errors.New("request has no parts")
)
