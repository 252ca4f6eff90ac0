package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/id"
	"github.com/biteguide-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Service interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type ServiceDeps struct {
	UserStore  userStore
	BcryptCost int
}

type service struct {
	users userStore
	cost  int
}

func NewService(deps ServiceDeps) Service {
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{users: deps.UserStore, cost: cost}
}

// NormalizeEmail is the canonical form used as the account and OTP key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Exists(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Create(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	var verr domain.ValidationErrors
	if !validate.Email(email) {
		verr.Add("email", domain.RuleEmail, validate.EmailMessage)
	}
	if !validate.Password(password) {
		verr.Add("password", domain.RulePassword, validate.PasswordMessage)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: string(hash),
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("sign in: %w", domain.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("sign in: %w", domain.ErrInvalidCredentials)
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}
