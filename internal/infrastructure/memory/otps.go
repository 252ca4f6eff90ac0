// Package memory holds process-local stores used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/biteguide-api/internal/domain"
)

type OTPRepo struct {
	mu      sync.RWMutex
	records map[string]domain.OTPRecord
}

func NewOTPRepo() *OTPRepo {
	return &OTPRepo{records: make(map[string]domain.OTPRecord)}
}

func (r *OTPRepo) Put(_ context.Context, rec *domain.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Identifier] = *rec
	return nil
}

func (r *OTPRepo) Get(_ context.Context, identifier string) (*domain.OTPRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[identifier]
	if !ok {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return &rec, nil
}

func (r *OTPRepo) Delete(_ context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, identifier)
	return nil
}

func (r *OTPRepo) DeleteIssuedBefore(_ context.Context, identifier string, cutoffMillis int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[identifier]
	if !ok || rec.Timestamp >= cutoffMillis {
		return false, nil
	}
	delete(r.records, identifier)
	return true, nil
}

func (r *OTPRepo) ListIssuedBefore(_ context.Context, cutoffMillis int64) ([]domain.OTPRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.OTPRecord
	for _, rec := range r.records {
		if rec.Timestamp < cutoffMillis {
			out = append(out, rec)
		}
	}
	return out, nil
}
