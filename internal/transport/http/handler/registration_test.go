package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jsonReq(method, target string, v interface{}) *http.Request {
	body, _ := json.Marshal(v)
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

func TestRegistrationGet_MissingClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	NewRegistrationHandler(&mockRegistrations{}).Get(rr, httptest.NewRequest(http.MethodGet, "/v1/registration", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegistrationGet_ReturnsStage(t *testing.T) {
	svc := &mockRegistrations{}
	svc.On("Get", mock.Anything, "u1").Return(registration.UnverifiedView{UserID: "u1"}, nil)

	rr := httptest.NewRecorder()
	NewRegistrationHandler(svc).Get(rr, withClaims(httptest.NewRequest(http.MethodGet, "/v1/registration", nil), "u1", "s1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"stage":"unverified","data":{"user_id":"u1"}}`, rr.Body.String())
}

func TestSubmitProfile_ValidationErrors(t *testing.T) {
	var verr domain.ValidationErrors
	verr.Add("name", domain.RuleName, "Name can only contain letters and spaces.")
	verr.Add("location", domain.RuleLocation, "We couldn't determine your location. Please enter your city and country.")
	svc := &mockRegistrations{}
	svc.On("SubmitProfile", mock.Anything, "u1", mock.AnythingOfType("registration.ProfileInput")).Return(nil, verr.Err())

	rr := httptest.NewRecorder()
	r := withClaims(jsonReq(http.MethodPut, "/v1/registration/profile", registration.ProfileInput{Name: "R2D2"}), "u1", "s1")
	NewRegistrationHandler(svc).SubmitProfile(rr, r)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, "name", resp.Fields[0].Field)
	assert.Equal(t, "location", resp.Fields[1].Field)
}

func TestSubmitPreferences_StageLocked(t *testing.T) {
	svc := &mockRegistrations{}
	svc.On("SubmitPreferences", mock.Anything, "u1", mock.Anything).Return(nil, domain.ErrStageLocked)

	rr := httptest.NewRecorder()
	r := withClaims(jsonReq(http.MethodPut, "/v1/registration/preferences", registration.PreferencesInput{}), "u1", "s1")
	NewRegistrationHandler(svc).SubmitPreferences(rr, r)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSubmitPreferences_Complete(t *testing.T) {
	in := registration.PreferencesInput{
		PreferredCuisines:   []string{"Thai", "Korean", "Greek"},
		DietaryRestrictions: []string{domain.OptionNone},
		Allergies:           []string{domain.OptionNone},
		SpiceTolerance:      domain.SpiceHot,
	}
	svc := &mockRegistrations{}
	svc.On("SubmitPreferences", mock.Anything, "u1", in).Return(registration.CompleteView{UserID: "u1"}, nil)

	rr := httptest.NewRecorder()
	r := withClaims(jsonReq(http.MethodPut, "/v1/registration/preferences", in), "u1", "s1")
	NewRegistrationHandler(svc).SubmitPreferences(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"stage":"complete"`)
	svc.AssertExpectations(t)
}

func TestValidatePreferences(t *testing.T) {
	cases := map[string]struct {
		step string
		in   registration.PreferencesInput
		want int
		body string
	}{
		"bad step": {step: "3", want: http.StatusBadRequest},
		"no cuisines": {
			step: "1",
			want: http.StatusUnprocessableEntity,
		},
		"step one passes": {
			step: "1",
			in:   registration.PreferencesInput{PreferredCuisines: []string{"Thai", "Korean", "Greek"}},
			want: http.StatusOK,
			body: `{"next_step":2,"complete":false}`,
		},
		"step two passes": {
			step: "2",
			in: registration.PreferencesInput{
				PreferredCuisines:   []string{"Thai", "Korean", "Greek"},
				DietaryRestrictions: []string{"vegan"},
				Allergies:           []string{domain.OptionNone},
				SpiceTolerance:      domain.SpiceMild,
			},
			want: http.StatusOK,
			body: `{"next_step":2,"complete":true}`,
		},
		"step two none is exclusive": {
			step: "2",
			in: registration.PreferencesInput{
				PreferredCuisines:   []string{"Thai", "Korean", "Greek"},
				DietaryRestrictions: []string{domain.OptionNone, "vegan"},
				Allergies:           []string{domain.OptionNone},
				SpiceTolerance:      domain.SpiceMild,
			},
			want: http.StatusUnprocessableEntity,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r := jsonReq(http.MethodPost, "/v1/registration/preferences/validate?step="+tc.step, tc.in)
			NewRegistrationHandler(&mockRegistrations{}).ValidatePreferences(rr, r)

			assert.Equal(t, tc.want, rr.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rr.Body.String())
			}
		})
	}
}

func TestPhone_UnknownAction(t *testing.T) {
	rr := httptest.NewRecorder()
	r := withChiParam(withClaims(httptest.NewRequest(http.MethodPost, "/v1/registration/phone/nope", nil), "u1", "s1"), "action", "nope")
	NewRegistrationHandler(&mockRegistrations{}).Phone(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPhone_Request(t *testing.T) {
	svc := &mockRegistrations{}
	svc.On("RequestPhoneCode", mock.Anything, "u1").Return(nil)

	rr := httptest.NewRecorder()
	r := withChiParam(withClaims(httptest.NewRequest(http.MethodPost, "/v1/registration/phone/request", nil), "u1", "s1"), "action", "request")
	NewRegistrationHandler(svc).Phone(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestPhone_ConfirmMalformedCode(t *testing.T) {
	svc := &mockRegistrations{}

	rr := httptest.NewRecorder()
	r := jsonReq(http.MethodPost, "/v1/registration/phone/confirm", map[string]string{"code": "12"})
	r = withChiParam(withClaims(r, "u1", "s1"), "action", "confirm")
	NewRegistrationHandler(svc).Phone(rr, r)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "ConfirmPhoneCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestPhone_ConfirmMismatch(t *testing.T) {
	svc := &mockRegistrations{}
	svc.On("ConfirmPhoneCode", mock.Anything, "u1", "000000").Return(nil, domain.ErrOTPMismatch)

	rr := httptest.NewRecorder()
	r := jsonReq(http.MethodPost, "/v1/registration/phone/confirm", map[string]string{"code": "000000"})
	r = withChiParam(withClaims(r, "u1", "s1"), "action", "confirm")
	NewRegistrationHandler(svc).Phone(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertExpectations(t)
}
