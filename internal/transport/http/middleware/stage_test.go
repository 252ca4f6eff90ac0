package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/domain"
	jwtinfra "github.com/biteguide-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRegistrations struct {
	view registration.View
	err  error
}

func (s stubRegistrations) Get(context.Context, string) (registration.View, error) {
	return s.view, s.err
}

func withClaims(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), ClaimsKey, &jwtinfra.Claims{UserID: userID})
	return r.WithContext(ctx)
}

func TestRequireStage_NoClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	RequireStage(stubRegistrations{}, domain.StageComplete)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireStage_Complete(t *testing.T) {
	regs := stubRegistrations{view: registration.CompleteView{UserID: "u1"}}
	req := withClaims(httptest.NewRequest(http.MethodGet, "/", nil), "u1")
	rr := httptest.NewRecorder()
	RequireStage(regs, domain.StageComplete)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireStage_Incomplete(t *testing.T) {
	regs := stubRegistrations{view: registration.PreferencesView{UserID: "u1"}}
	req := withClaims(httptest.NewRequest(http.MethodGet, "/", nil), "u1")
	rr := httptest.NewRecorder()
	RequireStage(regs, domain.StageComplete)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "preferencesIncomplete", body["stage"])
}

func TestRequireStage_LookupError(t *testing.T) {
	regs := stubRegistrations{err: errors.New("dynamo down")}
	req := withClaims(httptest.NewRequest(http.MethodGet, "/", nil), "u1")
	rr := httptest.NewRecorder()
	RequireStage(regs, domain.StageComplete)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
