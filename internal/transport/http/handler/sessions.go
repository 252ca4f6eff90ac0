package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/application/session"
	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/biteguide-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type registrationStarter interface {
	Begin(ctx context.Context, userID string) (registration.View, error)
}

// SessionHandler handles session endpoints.
type SessionHandler struct {
	sessions session.Manager
	regs     registrationStarter
	log      *zap.Logger
}

func NewSessionHandler(sessions session.Manager, regs registrationStarter, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, regs: regs, log: logger.OrNop(log)}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	// Begin is idempotent, so this also repairs a registration that failed to
	// start at sign-up.
	view, err := h.regs.Begin(r.Context(), sess.UserID)
	if err != nil {
		h.log.Warn("registration begin on login failed", zap.String("user_id", sess.UserID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Bearer:       sess.Token,
		Session:      sess,
		Registration: newRegistrationEnvelope(view),
	})
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sess, err := h.sessions.Current(r.Context(), claims.SessionID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Session: sess})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.sessions.SignOut(r.Context(), claims.SessionID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
