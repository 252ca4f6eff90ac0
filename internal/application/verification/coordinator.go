package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/biteguide-api/internal/application/account"
	"github.com/biteguide-api/internal/application/otp"
	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/application/session"
	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/biteguide-api/internal/pkg/validate"
	"go.uber.org/zap"
)

// FlowState is where an email sits in the verification flow.
type FlowState string

const (
	StateIdle     FlowState = "idle"
	StateOTPSent  FlowState = "otpSent"
	StateVerified FlowState = "verified"
)

type StartResult struct {
	Email     string    `json:"email"`
	State     FlowState `json:"state"`
	Delivered bool      `json:"delivered"`
}

type CompleteResult struct {
	State        FlowState         `json:"state"`
	Session      *session.Session  `json:"session"`
	Registration registration.View `json:"-"`
}

type accounts interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, password string) (*domain.User, error)
}

type codes interface {
	Issue(ctx context.Context, identifier string) (string, error)
	Verify(ctx context.Context, identifier, submitted string) (otp.Result, error)
	Pending(ctx context.Context, identifier string) (bool, error)
}

type gateway interface {
	Send(ctx context.Context, identifier, code string) error
}

type sessions interface {
	Establish(ctx context.Context, u *domain.User) (*session.Session, error)
}

type registrations interface {
	Begin(ctx context.Context, userID string) (registration.View, error)
}

type Coordinator interface {
	StartVerification(ctx context.Context, email, password string) (*StartResult, error)
	CompleteVerification(ctx context.Context, email, code, password string) (*CompleteResult, error)
	State(ctx context.Context, email string) (FlowState, error)
}

type CoordinatorDeps struct {
	Accounts      accounts
	OTP           codes
	Delivery      gateway
	Sessions      sessions
	Registrations registrations
	Log           *zap.Logger
}

type coordinator struct {
	accounts      accounts
	otp           codes
	delivery      gateway
	sessions      sessions
	registrations registrations
	log           *zap.Logger
}

func NewCoordinator(deps CoordinatorDeps) Coordinator {
	return &coordinator{
		accounts:      deps.Accounts,
		otp:           deps.OTP,
		delivery:      deps.Delivery,
		sessions:      deps.Sessions,
		registrations: deps.Registrations,
		log:           logger.OrNop(deps.Log),
	}
}

func (c *coordinator) StartVerification(ctx context.Context, email, password string) (*StartResult, error) {
	email = account.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	exists, err := c.accounts.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("start verification: %w", domain.ErrDuplicateAccount)
	}

	code, err := c.otp.Issue(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("issue otp: %w", err)
	}

	// The code is already stored; a failed send leaves it valid.
	delivered := true
	if err := c.delivery.Send(ctx, email, code); err != nil {
		delivered = false
		c.log.Warn("otp delivery failed", zap.String("email", email), zap.Error(err))
	}

	return &StartResult{Email: email, State: StateOTPSent, Delivered: delivered}, nil
}

func (c *coordinator) CompleteVerification(ctx context.Context, email, code, password string) (*CompleteResult, error) {
	email = account.NormalizeEmail(email)
	// Checked up front so a bad password never burns the code.
	if err := validateCompletion(email, code, password); err != nil {
		return nil, err
	}

	res, err := c.otp.Verify(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if !res.Accepted {
		return nil, fmt.Errorf("complete verification: %w", res.Err())
	}

	// The code is consumed from here on, whatever happens next.
	u, err := c.accounts.Create(ctx, email, password)
	if err != nil {
		c.log.Error("account creation after verification failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrAccountCreationFailed, err)
	}

	sess, err := c.sessions.Establish(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("sign in after verification: %w", err)
	}

	view, err := c.registrations.Begin(ctx, u.UserID)
	if err != nil {
		// Sign-in retries Begin, so the account is not stranded.
		c.log.Warn("begin registration failed", zap.String("user_id", u.UserID), zap.Error(err))
	}
	return &CompleteResult{State: StateVerified, Session: sess, Registration: view}, nil
}

// State is read from the account and OTP stores, so nothing is held per email.
// An account means verified, an outstanding code means otpSent, anything else
// is idle.
func (c *coordinator) State(ctx context.Context, email string) (FlowState, error) {
	email = account.NormalizeEmail(email)
	exists, err := c.accounts.Exists(ctx, email)
	if err != nil {
		return "", fmt.Errorf("check account: %w", err)
	}
	if exists {
		return StateVerified, nil
	}
	pending, err := c.otp.Pending(ctx, email)
	if err != nil {
		return "", fmt.Errorf("check otp: %w", err)
	}
	if pending {
		return StateOTPSent, nil
	}
	return StateIdle, nil
}

func validateCredentials(email, password string) error {
	var verr domain.ValidationErrors
	addCredentialErrors(&verr, email, password)
	return verr.Err()
}

func validateCompletion(email, code, password string) error {
	var verr domain.ValidationErrors
	addCredentialErrors(&verr, email, password)
	if !sixDigits(code) {
		verr.Add("otp", domain.RuleCode, "Please enter the 6-digit code from your email.")
	}
	return verr.Err()
}

func addCredentialErrors(verr *domain.ValidationErrors, email, password string) {
	if !validate.Email(email) {
		verr.Add("email", domain.RuleEmail, validate.EmailMessage)
	}
	if !validate.Password(password) {
		verr.Add("password", domain.RulePassword, validate.PasswordMessage)
	}
}

func sixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Message turns any coordinator error into text that can be shown to the user.
func Message(err error) string {
	var verr domain.ValidationErrors
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		msgs := make([]string, len(verr))
		for i, fe := range verr {
			msgs[i] = fe.Message
		}
		return strings.Join(msgs, " ")
	case errors.Is(err, domain.ErrDuplicateAccount):
		return "An account with this email already exists. Please sign in instead."
	case errors.Is(err, domain.ErrOTPMissingOrExpired):
		return "Your code has expired or could not be found. Please request a new one."
	case errors.Is(err, domain.ErrOTPMismatch):
		return "Incorrect code. Please try again."
	case errors.Is(err, domain.ErrDeliveryFailure):
		return "We couldn't send your code. Please try again."
	case errors.Is(err, domain.ErrAccountCreationFailed):
		return "Your email was verified but we couldn't create your account. Please start again."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Incorrect email or password."
	default:
		return "Something went wrong. Please try again."
	}
}
