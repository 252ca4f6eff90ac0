package handler

import (
	"encoding/json"
	"net/http"

	"github.com/biteguide-api/internal/application/verification"
)

// VerificationHandler drives the email OTP sign-up flow.
type VerificationHandler struct {
	coord verification.Coordinator
}

func NewVerificationHandler(coord verification.Coordinator) *VerificationHandler {
	return &VerificationHandler{coord: coord}
}

type startRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type completeRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type startResponse struct {
	*verification.StartResult
	Message string `json:"message,omitempty"`
}

func (h *VerificationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.coord.StartVerification(r.Context(), req.Email, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := startResponse{StartResult: res, Message: "We sent a 6-digit code to your email."}
	if !res.Delivered {
		resp.Message = "We couldn't send your code. Please try again."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VerificationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.coord.CompleteVerification(r.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	env := AuthEnvelope{Session: res.Session, Registration: newRegistrationEnvelope(res.Registration)}
	if res.Session != nil {
		env.Bearer = res.Session.Token
	}
	writeJSON(w, http.StatusCreated, env)
}

func (h *VerificationHandler) State(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return
	}
	state, err := h.coord.State(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]verification.FlowState{"state": state})
}
