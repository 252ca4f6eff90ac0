package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/biteguide-api/internal/application/delivery"
	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/biteguide-api/internal/pkg/validate"
	"go.uber.org/zap"
)

type functionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FunctionsHandler hosts the email delivery function that HTTP delivery mode posts to.
type FunctionsHandler struct {
	mailer   delivery.Mailer
	validity time.Duration
	log      *zap.Logger
}

func NewFunctionsHandler(mailer delivery.Mailer, validity time.Duration, log *zap.Logger) *FunctionsHandler {
	return &FunctionsHandler{mailer: mailer, validity: validity, log: logger.OrNop(log)}
}

func (h *FunctionsHandler) SendEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,otpemail"`
		OTP   string `json:"otp" validate:"required,len=6,numeric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, functionResponse{Message: "Failed to send OTP."})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warn("send email otp rejected", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, functionResponse{Message: "Failed to send OTP."})
		return
	}
	if err := h.mailer.SendEmail(r.Context(), req.Email, delivery.EmailSubject, delivery.EmailBody(req.OTP, h.validity)); err != nil {
		h.log.Error("send email otp", zap.String("email", req.Email), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, functionResponse{Message: "Failed to send OTP."})
		return
	}
	writeJSON(w, http.StatusOK, functionResponse{Success: true, Message: "OTP sent!"})
}
