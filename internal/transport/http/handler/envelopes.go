package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/application/session"
	"github.com/biteguide-api/internal/application/verification"
	"github.com/biteguide-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string              `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
	ErrorCode string              `json:"error_code,omitempty"`
	Fields    []domain.FieldError `json:"fields,omitempty"`
}

// AuthEnvelope wraps responses that issue a session.
type AuthEnvelope struct {
	Bearer       string                `json:"Bearer,omitempty"`
	Session      *session.Session      `json:"session,omitempty"`
	Registration *RegistrationEnvelope `json:"registration,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *session.Session `json:"session,omitempty"`
}

// RegistrationEnvelope carries the stage alongside the data that stage exposes.
type RegistrationEnvelope struct {
	Stage domain.Stage      `json:"stage"`
	Data  registration.View `json:"data"`
}

func newRegistrationEnvelope(v registration.View) *RegistrationEnvelope {
	if v == nil {
		return nil
	}
	return &RegistrationEnvelope{Stage: v.Stage(), Data: v}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a service error to its status code and user-facing message.
func httpError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	env := MessageEnvelope{Error: userMessage(err), ErrorCode: code}
	var verr domain.ValidationErrors
	if errors.As(err, &verr) {
		env.Fields = verr
	}
	writeJSON(w, status, env)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrStageLocked):
		return "This step isn't available yet. Please finish the previous step first."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Your session has ended. Please sign in again."
	case errors.Is(err, domain.ErrForbidden):
		return "This account is disabled."
	case errors.Is(err, domain.ErrNotFound):
		return "Not found."
	}
	return verification.Message(err)
}

func statusFor(err error) (int, string) {
	sentinels := []struct {
		err    error
		status int
	}{
		{domain.ErrValidation, http.StatusUnprocessableEntity},
		{domain.ErrDuplicateAccount, http.StatusConflict},
		{domain.ErrOTPMissingOrExpired, http.StatusGone},
		{domain.ErrOTPMismatch, http.StatusBadRequest},
		{domain.ErrDeliveryFailure, http.StatusBadGateway},
		{domain.ErrAccountCreationFailed, http.StatusInternalServerError},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrStageLocked, http.StatusConflict},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrBadRequest, http.StatusBadRequest},
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status, s.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
