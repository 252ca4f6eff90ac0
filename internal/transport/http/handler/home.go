package handler

import (
	"net/http"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/transport/http/middleware"
)

// HomeHandler is the main application surface, reachable once onboarding is complete.
type HomeHandler struct {
	svc registration.Service
}

func NewHomeHandler(svc registration.Service) *HomeHandler { return &HomeHandler{svc: svc} }

func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	view, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	done, ok := view.(registration.CompleteView)
	if !ok {
		writeError(w, http.StatusForbidden, "registration incomplete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Welcome, " + done.Profile.Name,
		"profile":     done.Profile,
		"preferences": done.Preferences,
	})
}
