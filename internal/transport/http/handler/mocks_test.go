package handler

import (
	"context"
	"net/http"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/application/session"
	"github.com/biteguide-api/internal/application/verification"
	"github.com/biteguide-api/internal/domain"
	jwtinfra "github.com/biteguide-api/internal/infrastructure/jwt"
	"github.com/biteguide-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

type mockCoordinator struct{ mock.Mock }

func (m *mockCoordinator) StartVerification(ctx context.Context, email, password string) (*verification.StartResult, error) {
	args := m.Called(ctx, email, password)
	if r, _ := args.Get(0).(*verification.StartResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCoordinator) CompleteVerification(ctx context.Context, email, code, password string) (*verification.CompleteResult, error) {
	args := m.Called(ctx, email, code, password)
	if r, _ := args.Get(0).(*verification.CompleteResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCoordinator) State(ctx context.Context, email string) (verification.FlowState, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(verification.FlowState), args.Error(1)
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	args := m.Called(ctx, email, password)
	if s, _ := args.Get(0).(*session.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) Establish(ctx context.Context, u *domain.User) (*session.Session, error) {
	args := m.Called(ctx, u)
	if s, _ := args.Get(0).(*session.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) SignOut(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockSessions) Current(ctx context.Context, sessionID string) (*session.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*session.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) Subscribe(func(session.Event)) func() { return func() {} }

type mockRegistrations struct{ mock.Mock }

func (m *mockRegistrations) view(args mock.Arguments) (registration.View, error) {
	if v, _ := args.Get(0).(registration.View); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrations) Begin(ctx context.Context, userID string) (registration.View, error) {
	return m.view(m.Called(ctx, userID))
}

func (m *mockRegistrations) Get(ctx context.Context, userID string) (registration.View, error) {
	return m.view(m.Called(ctx, userID))
}

func (m *mockRegistrations) SubmitProfile(ctx context.Context, userID string, in registration.ProfileInput) (registration.View, error) {
	return m.view(m.Called(ctx, userID, in))
}

func (m *mockRegistrations) SubmitPreferences(ctx context.Context, userID string, in registration.PreferencesInput) (registration.View, error) {
	return m.view(m.Called(ctx, userID, in))
}

func (m *mockRegistrations) RequestPhoneCode(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockRegistrations) ConfirmPhoneCode(ctx context.Context, userID, code string) (registration.View, error) {
	return m.view(m.Called(ctx, userID, code))
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

// withClaims injects claims as if middleware.Auth had run.
func withClaims(r *http.Request, userID, sessionID string) *http.Request {
	c := &jwtinfra.Claims{UserID: userID, SessionID: sessionID}
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, c))
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
