package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/biteguide-api/internal/domain"
)

type RegistrationRepo struct {
	mu   sync.Mutex
	regs map[string]domain.Registration
}

func NewRegistrationRepo() *RegistrationRepo {
	return &RegistrationRepo{regs: make(map[string]domain.Registration)}
}

func (r *RegistrationRepo) Create(_ context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[reg.UserID]; ok {
		return fmt.Errorf("create registration: %w", domain.ErrConflict)
	}
	r.regs[reg.UserID] = cloneRegistration(*reg)
	return nil
}

func (r *RegistrationRepo) Get(_ context.Context, userID string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[userID]
	if !ok {
		return nil, fmt.Errorf("registration not found: %w", domain.ErrNotFound)
	}
	out := cloneRegistration(reg)
	return &out, nil
}

// Save mirrors the conditional write of the DynamoDB repo.
func (r *RegistrationRepo) Save(_ context.Context, reg *domain.Registration, expected domain.Stage) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.regs[reg.UserID]
	if !ok {
		return nil, fmt.Errorf("registration not found: %w", domain.ErrNotFound)
	}
	if cur.Stage != expected {
		return nil, fmt.Errorf("save registration: %w", domain.ErrStageLocked)
	}
	cur.Stage = reg.Stage
	cur.UpdatedAt = reg.UpdatedAt
	if reg.Profile != nil {
		cur.Profile = reg.Profile
	}
	if reg.Preferences != nil {
		cur.Preferences = reg.Preferences
	}
	cur = cloneRegistration(cur)
	r.regs[reg.UserID] = cur
	out := cloneRegistration(cur)
	return &out, nil
}

func cloneRegistration(reg domain.Registration) domain.Registration {
	if reg.Profile != nil {
		p := *reg.Profile
		reg.Profile = &p
	}
	if reg.Preferences != nil {
		p := *reg.Preferences
		p.PreferredCuisines = append([]string(nil), p.PreferredCuisines...)
		p.DietaryRestrictions = append([]string(nil), p.DietaryRestrictions...)
		p.Allergies = append([]string(nil), p.Allergies...)
		reg.Preferences = &p
	}
	return reg
}
