package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/biteguide-api/internal/pkg/otpcode"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Reason explains a verification outcome.
type Reason string

const (
	ReasonAccepted         Reason = "accepted"
	ReasonExpiredOrMissing Reason = "expired_or_missing"
	ReasonMismatch         Reason = "mismatch"
)

type Result struct {
	Accepted bool
	Reason   Reason
}

// Err maps a rejected result to its sentinel. Accepted results return nil.
func (r Result) Err() error {
	switch r.Reason {
	case ReasonAccepted:
		return nil
	case ReasonMismatch:
		return domain.ErrOTPMismatch
	default:
		return domain.ErrOTPMissingOrExpired
	}
}

// Store is the document-store contract for OTP records. Get on an absent
// identifier returns an error wrapping domain.ErrNotFound.
type Store interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, identifier string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, identifier string) error
	ListIssuedBefore(ctx context.Context, cutoffMillis int64) ([]domain.OTPRecord, error)
	// DeleteIssuedBefore removes the record only if its timestamp is still
	// strictly less than cutoffMillis. It reports whether a record was removed.
	DeleteIssuedBefore(ctx context.Context, identifier string, cutoffMillis int64) (bool, error)
}

type Service interface {
	Issue(ctx context.Context, identifier string) (string, error)
	Verify(ctx context.Context, identifier, submitted string) (Result, error)
	Pending(ctx context.Context, identifier string) (bool, error)
	Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

type ServiceDeps struct {
	Store     Store
	Generator otpcode.Generator
	Clock     clockwork.Clock
	Log       *zap.Logger
}

type service struct {
	store Store
	gen   otpcode.Generator
	clock clockwork.Clock
	log   *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	gen := deps.Generator
	if gen == nil {
		gen = otpcode.Default
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &service{
		store: deps.Store,
		gen:   gen,
		clock: clock,
		log:   logger.OrNop(deps.Log),
	}
}

// Issue overwrites any live record for identifier with a fresh code.
func (s *service) Issue(ctx context.Context, identifier string) (string, error) {
	code := s.gen.Generate()
	rec := &domain.OTPRecord{
		Identifier: identifier,
		Code:       code,
		Timestamp:  s.clock.Now().UnixMilli(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify consumes the record on a match and keeps it on a mismatch.
// Expiry is not checked here; records older than the window are removed by Sweep.
func (s *service) Verify(ctx context.Context, identifier, submitted string) (Result, error) {
	rec, err := s.store.Get(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return Result{Reason: ReasonExpiredOrMissing}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("load otp: %w", err)
	}
	if rec.Code != submitted {
		return Result{Reason: ReasonMismatch}, nil
	}
	if err := s.store.Delete(ctx, identifier); err != nil {
		return Result{}, fmt.Errorf("consume otp: %w", err)
	}
	return Result{Accepted: true, Reason: ReasonAccepted}, nil
}

// Pending reports whether a code is outstanding for identifier. Like Verify it
// does not check age, so a record counts until Sweep removes it.
func (s *service) Pending(ctx context.Context, identifier string) (bool, error) {
	_, err := s.store.Get(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load otp: %w", err)
	}
	return true, nil
}

// Sweep deletes every record with now - issuedAt > window and reports how many went.
// A failed delete is logged and the sweep carries on with the rest.
func (s *service) Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	cutoff := now.UnixMilli() - window.Milliseconds()
	stale, err := s.store.ListIssuedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale otps: %w", err)
	}
	deleted := 0
	for i := range stale {
		rec := &stale[i]
		if !rec.ExpiredAt(now, window) {
			continue
		}
		// A code reissued since the listing carries a newer timestamp and is left alone.
		removed, err := s.store.DeleteIssuedBefore(ctx, rec.Identifier, cutoff)
		if err != nil {
			s.log.Warn("sweep: delete otp", zap.String("identifier", rec.Identifier), zap.Error(err))
			continue
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}
