package http

import (
	"context"

	"github.com/biteguide-api/internal/application/delivery"
	"github.com/biteguide-api/internal/application/location"
	"github.com/biteguide-api/internal/application/otp"
	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/domain"
	jwtinfra "github.com/biteguide-api/internal/infrastructure/jwt"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	SessionRepo      SessionRepository
	OTPRepo          otp.Store
	RegistrationRepo registration.Store

	// EmailDelivery sends sign-up codes; PhoneDelivery sends phone confirmation codes.
	EmailDelivery delivery.Gateway
	PhoneDelivery delivery.Gateway
	// Mailer backs the send-email-otp function. The route is not mounted when nil.
	Mailer   delivery.Mailer
	Geocoder location.ReverseGeocoder

	JWTProvider *jwtinfra.Provider
	Clock       clockwork.Clock
	Log         *zap.Logger
}
