package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	ErrValidation            = errors.New("validation_error")
	ErrDuplicateAccount      = errors.New("duplicate_account")
	ErrOTPMissingOrExpired   = errors.New("otp_missing_or_expired")
	ErrOTPMismatch           = errors.New("otp_mismatch")
	ErrDeliveryFailure       = errors.New("delivery_failure")
	ErrAccountCreationFailed = errors.New("account_creation_failure")
	ErrLocationLookupFailed  = errors.New("location_lookup_failure")
	ErrInvalidCredentials    = errors.New("invalid_credentials")
	ErrStageLocked           = errors.New("stage_locked")
)
