package registration

import (
	"context"
	"fmt"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/phone"
	"go.uber.org/zap"
)

func phoneKey(e164 string) string { return "phone:" + e164 }

func countryOrDefault(code string) string {
	if code == "" {
		return phone.DefaultCountryCode
	}
	return code
}

// RequestPhoneCode texts a code to the profile's phone number. A failed send
// is returned; the issued code stays valid so a retry can reuse the same flow.
func (s *service) RequestPhoneCode(ctx context.Context, userID string) error {
	cur, err := s.current(ctx, userID)
	if err != nil {
		return err
	}
	if cur.Profile == nil || cur.Profile.Phone == "" {
		return fmt.Errorf("no phone on profile: %w", domain.ErrStageLocked)
	}
	if cur.Profile.PhoneConfirmed {
		return nil
	}
	code, err := s.phoneOTP.Issue(ctx, phoneKey(cur.Profile.Phone))
	if err != nil {
		return fmt.Errorf("issue phone code: %w", err)
	}
	if err := s.phoneSend.Send(ctx, cur.Profile.Phone, code); err != nil {
		s.log.Warn("phone code delivery failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ConfirmPhoneCode marks the phone confirmed. Confirmation is informational and
// does not gate any stage.
func (s *service) ConfirmPhoneCode(ctx context.Context, userID, code string) (View, error) {
	cur, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cur.Profile == nil || cur.Profile.Phone == "" {
		return nil, fmt.Errorf("no phone on profile: %w", domain.ErrStageLocked)
	}
	if cur.Profile.PhoneConfirmed {
		return viewOf(cur), nil
	}
	res, err := s.phoneOTP.Verify(ctx, phoneKey(cur.Profile.Phone), code)
	if err != nil {
		return nil, err
	}
	if !res.Accepted {
		return nil, fmt.Errorf("confirm phone: %w", res.Err())
	}
	profile := *cur.Profile
	profile.PhoneConfirmed = true
	return s.persist(ctx, cur, cur.Stage, &profile, nil)
}
