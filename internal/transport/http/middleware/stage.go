package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/domain"
)

type registrationLookup interface {
	Get(ctx context.Context, userID string) (registration.View, error)
}

// RequireStage rejects requests whose user has not reached min.
// Must be used after Auth so claims are present in context.
func RequireStage(regs registrationLookup, min domain.Stage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			view, err := regs.Get(r.Context(), claims.UserID)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, "registration lookup failed")
				return
			}
			if view.Stage().Before(min) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "registration incomplete",
					"stage": string(view.Stage()),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
