package location

import (
	"context"
	"strings"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/infrastructure/geocode"
	"github.com/biteguide-api/internal/pkg/logger"
	"go.uber.org/zap"
)

const ManualEntryMessage = "We couldn't determine your location. Please enter your city and country."

// Input is what the device reported plus anything typed by hand.
// Manual city and country win over coordinates when both are present.
type Input struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	PermissionDenied bool     `json:"permission_denied"`
	City             string   `json:"city"`
	Country          string   `json:"country"`
}

type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*geocode.Place, error)
}

type Resolver struct {
	geocoder ReverseGeocoder
	log      *zap.Logger
}

// NewResolver accepts a nil geocoder, in which case only manual entry works.
func NewResolver(g ReverseGeocoder, log *zap.Logger) *Resolver {
	return &Resolver{geocoder: g, log: logger.OrNop(log)}
}

// Validate reports the error Resolve would give without calling the geocoder.
// Input that still needs a lookup passes.
func (r *Resolver) Validate(in Input) error {
	if _, ok := manual(in); ok || r.canLookup(in) {
		return nil
	}
	return manualEntryRequired()
}

// Resolve never fails hard: a lookup failure turns into a field error asking
// for manual entry.
func (r *Resolver) Resolve(ctx context.Context, in Input) (*domain.Location, error) {
	if loc, ok := manual(in); ok {
		return loc, nil
	}

	if r.canLookup(in) {
		place, err := r.geocoder.Reverse(ctx, *in.Latitude, *in.Longitude)
		if err == nil {
			return &domain.Location{
				City:      place.City,
				Country:   place.Country,
				Source:    domain.LocationGeocoded,
				Latitude:  in.Latitude,
				Longitude: in.Longitude,
			}, nil
		}
		r.log.Warn("reverse geocode failed, asking for manual entry", zap.Error(err))
	}
	return nil, manualEntryRequired()
}

func (r *Resolver) canLookup(in Input) bool {
	return r.geocoder != nil && !in.PermissionDenied && in.Latitude != nil && in.Longitude != nil
}

func manual(in Input) (*domain.Location, bool) {
	city := strings.TrimSpace(in.City)
	country := strings.TrimSpace(in.Country)
	if city == "" || country == "" {
		return nil, false
	}
	return &domain.Location{City: city, Country: country, Source: domain.LocationManual}, true
}

func manualEntryRequired() error {
	var verr domain.ValidationErrors
	verr.Add("location", domain.RuleLocation, ManualEntryMessage)
	return verr
}
