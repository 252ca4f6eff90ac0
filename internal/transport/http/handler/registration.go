package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/pkg/validate"
	"github.com/biteguide-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// RegistrationHandler exposes the onboarding stages to the signed-in user.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	view, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegistrationEnvelope(view))
}

func (h *RegistrationHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in registration.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.svc.SubmitProfile(r.Context(), claims.UserID, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegistrationEnvelope(view))
}

func (h *RegistrationHandler) SubmitPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in registration.PreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.svc.SubmitPreferences(r.Context(), claims.UserID, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegistrationEnvelope(view))
}

// ValidatePreferences checks one wizard step without saving anything.
// step=1 checks cuisines; step=2 checks cuisines then the detail fields.
func (h *RegistrationHandler) ValidatePreferences(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(r.URL.Query().Get("step"))
	if err != nil || (step != int(registration.StepCuisines) && step != int(registration.StepDetails)) {
		writeError(w, http.StatusBadRequest, "step must be 1 or 2")
		return
	}
	var in registration.PreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	wiz := registration.NewWizard(nil)
	wiz.SetCuisines(in.PreferredCuisines)
	if err := wiz.Next(); err != nil {
		httpError(w, err)
		return
	}
	if registration.WizardStep(step) == registration.StepDetails {
		wiz.SetDetails(in.DietaryRestrictions, in.Allergies, in.SpiceTolerance)
		if err := wiz.Next(); err != nil {
			httpError(w, err)
			return
		}
	}
	_, inErr := wiz.Input()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"next_step": wiz.Step(),
		"complete":  inErr == nil,
	})
}

func (h *RegistrationHandler) Phone(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	switch chi.URLParam(r, "action") {
	case "request":
		if err := h.svc.RequestPhoneCode(r.Context(), claims.UserID); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "confirmation SMS sent"})
	case "confirm":
		var body struct {
			Code string `json:"code" validate:"required,len=6,numeric"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(body); err != nil {
			httpError(w, err)
			return
		}
		view, err := h.svc.ConfirmPhoneCode(r.Context(), claims.UserID, body.Code)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newRegistrationEnvelope(view))
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
