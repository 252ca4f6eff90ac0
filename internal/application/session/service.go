package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/id"
	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Session is the explicit authenticated identity handed to callers.
// Token is only populated when the session is first issued.
type Session struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Token    string    `json:"bearer,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
}

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

type Event struct {
	Type    EventType
	Session Session
}

type authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type tokenSigner interface {
	Sign(userID, sessionID, email string) (string, error)
}

type Manager interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Establish(ctx context.Context, u *domain.User) (*Session, error)
	SignOut(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (*Session, error)
	Subscribe(fn func(Event)) (unsubscribe func())
}

type ManagerDeps struct {
	Accounts     authenticator
	SessionStore sessionStore
	Signer       tokenSigner
	Clock        clockwork.Clock
	Log          *zap.Logger
}

type manager struct {
	accounts authenticator
	sessions sessionStore
	signer   tokenSigner
	clock    clockwork.Clock
	log      *zap.Logger

	mu        sync.Mutex
	nextSubID int
	listeners map[int]func(Event)
}

func NewManager(deps ManagerDeps) Manager {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &manager{
		accounts:  deps.Accounts,
		sessions:  deps.SessionStore,
		signer:    deps.Signer,
		clock:     clock,
		log:       logger.OrNop(deps.Log),
		listeners: make(map[int]func(Event)),
	}
}

func (m *manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := m.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.Establish(ctx, u)
}

// Establish opens a session for an already authenticated user.
func (m *manager) Establish(ctx context.Context, u *domain.User) (*Session, error) {
	now := m.clock.Now().UTC()
	rec := &domain.Session{
		SessionID: id.NewAt(now),
		UserID:    u.UserID,
		Email:     u.Email,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.sessions.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	token, err := m.signer.Sign(u.UserID, rec.SessionID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	sess := &Session{ID: rec.SessionID, UserID: u.UserID, Email: u.Email, Token: token, IssuedAt: now}
	m.publish(Event{Type: EventSignedIn, Session: *sess})
	return sess, nil
}

func (m *manager) SignOut(ctx context.Context, sessionID string) error {
	rec, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !rec.Enable {
		return nil
	}
	if err := m.sessions.Disable(ctx, sessionID); err != nil {
		return fmt.Errorf("disable session: %w", err)
	}
	m.publish(Event{Type: EventSignedOut, Session: fromRecord(rec)})
	return nil
}

func (m *manager) Current(ctx context.Context, sessionID string) (*Session, error) {
	rec, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !rec.Enable {
		return nil, fmt.Errorf("session signed out: %w", domain.ErrUnauthorized)
	}
	sess := fromRecord(rec)
	return &sess, nil
}

// Subscribe registers fn for every sign-in and sign-out. Listeners run
// synchronously on the caller's goroutine and must not call Subscribe.
func (m *manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	subID := m.nextSubID
	m.nextSubID++
	m.listeners[subID] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, subID)
	}
}

func (m *manager) publish(ev Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	m.log.Debug("session event", zap.String("type", string(ev.Type)), zap.String("user_id", ev.Session.UserID))
	for _, fn := range fns {
		fn(ev)
	}
}

func fromRecord(rec *domain.Session) Session {
	return Session{ID: rec.SessionID, UserID: rec.UserID, Email: rec.Email, IssuedAt: rec.CreatedAt}
}
