package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/biteguide-api/internal/application/location"
	"github.com/biteguide-api/internal/application/otp"
	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type ProfileInput struct {
	Name         string         `json:"name"`
	Phone        string         `json:"phone"`
	PhoneCountry string         `json:"phone_country"`
	Location     location.Input `json:"location"`
}

type PreferencesInput struct {
	PreferredCuisines   []string              `json:"preferred_cuisines"`
	DietaryRestrictions []string              `json:"dietary_restrictions"`
	Allergies           []string              `json:"allergies"`
	SpiceTolerance      domain.SpiceTolerance `json:"spice_tolerance"`
}

// Store persists registration records. Save must only succeed while the stored
// stage still equals expected.
type Store interface {
	Create(ctx context.Context, reg *domain.Registration) error
	Get(ctx context.Context, userID string) (*domain.Registration, error)
	Save(ctx context.Context, reg *domain.Registration, expected domain.Stage) (*domain.Registration, error)
}

type locator interface {
	Validate(in location.Input) error
	Resolve(ctx context.Context, in location.Input) (*domain.Location, error)
}

type codeIssuer interface {
	Issue(ctx context.Context, identifier string) (string, error)
	Verify(ctx context.Context, identifier, submitted string) (otp.Result, error)
}

type codeSender interface {
	Send(ctx context.Context, identifier, code string) error
}

type Service interface {
	Begin(ctx context.Context, userID string) (View, error)
	Get(ctx context.Context, userID string) (View, error)
	SubmitProfile(ctx context.Context, userID string, in ProfileInput) (View, error)
	SubmitPreferences(ctx context.Context, userID string, in PreferencesInput) (View, error)
	RequestPhoneCode(ctx context.Context, userID string) error
	ConfirmPhoneCode(ctx context.Context, userID, code string) (View, error)
}

type ServiceDeps struct {
	Store     Store
	Locator   locator
	PhoneOTP  codeIssuer
	PhoneSend codeSender
	Clock     clockwork.Clock
	Log       *zap.Logger
}

type service struct {
	store     Store
	locator   locator
	phoneOTP  codeIssuer
	phoneSend codeSender
	clock     clockwork.Clock
	log       *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &service{
		store:     deps.Store,
		locator:   deps.Locator,
		phoneOTP:  deps.PhoneOTP,
		phoneSend: deps.PhoneSend,
		clock:     clock,
		log:       logger.OrNop(deps.Log),
	}
}

// Begin opens the record at profileIncomplete. Calling it again is harmless.
func (s *service) Begin(ctx context.Context, userID string) (View, error) {
	now := s.clock.Now().UTC()
	reg := &domain.Registration{
		UserID:    userID,
		Stage:     domain.StageProfileIncomplete,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.Create(ctx, reg)
	if errors.Is(err, domain.ErrConflict) {
		return s.Get(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}
	return viewOf(reg), nil
}

func (s *service) Get(ctx context.Context, userID string) (View, error) {
	reg, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return UnverifiedView{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return viewOf(reg), nil
}

// SubmitProfile reports every field problem at once. Submitting again after the
// profile stage updates the profile and leaves stage and preferences alone.
func (s *service) SubmitProfile(ctx context.Context, userID string, in ProfileInput) (View, error) {
	cur, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}

	var verr domain.ValidationErrors
	e164 := validateIdentity(in, &verr)
	if len(verr) > 0 {
		// The geocoder is not called while other fields fail.
		appendFieldErrors(&verr, s.locator.Validate(in.Location))
		return nil, verr.Err()
	}
	loc, err := s.locator.Resolve(ctx, in.Location)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		Name:         in.Name,
		Phone:        e164,
		PhoneCountry: countryOrDefault(in.PhoneCountry),
		Location:     *loc,
	}
	if cur.Profile != nil && cur.Profile.Phone == e164 {
		profile.PhoneConfirmed = cur.Profile.PhoneConfirmed
	}
	return s.persist(ctx, cur, advance(cur.Stage, domain.StagePreferencesIncomplete), profile, nil)
}

func appendFieldErrors(verr *domain.ValidationErrors, err error) {
	var more domain.ValidationErrors
	if errors.As(err, &more) {
		*verr = append(*verr, more...)
	}
}

// SubmitPreferences validates before touching the store.
func (s *service) SubmitPreferences(ctx context.Context, userID string, in PreferencesInput) (View, error) {
	prefs, err := validatePreferences(in)
	if err != nil {
		return nil, err
	}
	cur, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cur.Stage.Before(domain.StagePreferencesIncomplete) || cur.Profile == nil {
		return nil, fmt.Errorf("profile not complete: %w", domain.ErrStageLocked)
	}
	return s.persist(ctx, cur, advance(cur.Stage, domain.StageComplete), nil, prefs)
}

// current loads the record and refuses accounts that never verified.
func (s *service) current(ctx context.Context, userID string) (*domain.Registration, error) {
	cur, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("registration not started: %w", domain.ErrStageLocked)
	}
	if err != nil {
		return nil, err
	}
	if cur.Stage.Before(domain.StageProfileIncomplete) {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrStageLocked)
	}
	return cur, nil
}

// persist makes the single conditional write for a transition. The stored
// result, not the request, decides what the caller sees.
func (s *service) persist(ctx context.Context, cur *domain.Registration, next domain.Stage, profile *domain.Profile, prefs *domain.Preferences) (View, error) {
	update := &domain.Registration{
		UserID:      cur.UserID,
		Stage:       next,
		Profile:     profile,
		Preferences: prefs,
		UpdatedAt:   s.clock.Now().UTC(),
	}
	saved, err := s.store.Save(ctx, update, cur.Stage)
	if err != nil {
		return nil, fmt.Errorf("persist registration: %w", err)
	}
	if saved.Stage != cur.Stage {
		s.log.Info("registration advanced",
			zap.String("user_id", cur.UserID),
			zap.String("from", string(cur.Stage)),
			zap.String("to", string(saved.Stage)))
	}
	return viewOf(saved), nil
}

// advance never moves a stage backwards.
func advance(cur, target domain.Stage) domain.Stage {
	if cur.Before(target) {
		return target
	}
	return cur
}
