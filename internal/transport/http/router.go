package http

import (
	"context"
	"net/http"

	"github.com/biteguide-api/internal/application/account"
	"github.com/biteguide-api/internal/application/delivery"
	"github.com/biteguide-api/internal/application/location"
	"github.com/biteguide-api/internal/application/otp"
	"github.com/biteguide-api/internal/application/registration"
	"github.com/biteguide-api/internal/application/session"
	"github.com/biteguide-api/internal/application/verification"
	"github.com/biteguide-api/internal/config"
	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/biteguide-api/internal/transport/http/handler"
	appmiddleware "github.com/biteguide-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background work started for the router.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	log := logger.OrNop(deps.Log)
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	emailDelivery, phoneDelivery := deps.EmailDelivery, deps.PhoneDelivery
	if emailDelivery == nil {
		emailDelivery = delivery.NewLogGateway(log)
	}
	if phoneDelivery == nil {
		phoneDelivery = delivery.NewLogGateway(log)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, applied to public endpoints that send or check codes.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)
	if proxies, err := appmiddleware.ParsePrefixes(cfg.TrustedProxies); err != nil {
		log.Warn("ignoring TRUSTED_PROXIES; limiting on peer address", zap.Error(err))
	} else {
		sensitiveRL.TrustProxies(proxies)
	}

	codes := otp.NewService(otp.ServiceDeps{Store: deps.OTPRepo, Clock: clock, Log: log})
	accountSvc := account.NewService(account.ServiceDeps{UserStore: deps.UserRepo})
	sessionMgr := session.NewManager(session.ManagerDeps{
		Accounts:     accountSvc,
		SessionStore: deps.SessionRepo,
		Signer:       deps.JWTProvider,
		Clock:        clock,
		Log:          log,
	})
	sessionMgr.Subscribe(func(ev session.Event) {
		log.Info("session event",
			zap.String("type", string(ev.Type)),
			zap.String("user_id", ev.Session.UserID),
			zap.String("session_id", ev.Session.ID))
	})
	regSvc := registration.NewService(registration.ServiceDeps{
		Store:     deps.RegistrationRepo,
		Locator:   location.NewResolver(deps.Geocoder, log),
		PhoneOTP:  codes,
		PhoneSend: phoneDelivery,
		Clock:     clock,
		Log:       log,
	})
	coord := verification.NewCoordinator(verification.CoordinatorDeps{
		Accounts:      accountSvc,
		OTP:           codes,
		Delivery:      emailDelivery,
		Sessions:      sessionMgr,
		Registrations: regSvc,
		Log:           log,
	})

	authMw := appmiddleware.Auth(deps.JWTProvider, sessionMgr)

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerificationHandler(coord)
	sessionH := handler.NewSessionHandler(sessionMgr, regSvc, log)
	regH := handler.NewRegistrationHandler(regSvc)
	catalogH := handler.NewCatalogHandler()
	homeH := handler.NewHomeHandler(regSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Check)
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/verification/start", verifyH.Start)
		r.With(sensitiveRL.Limit).Post("/verification/complete", verifyH.Complete)
		r.With(sensitiveRL.Limit).Get("/verification/state", verifyH.State)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Get("/catalog/countries", catalogH.Countries)
		r.Get("/catalog/preferences", catalogH.Preferences)
		r.Post("/registration/preferences/validate", regH.ValidatePreferences)
		if deps.Mailer != nil {
			fnH := handler.NewFunctionsHandler(deps.Mailer, cfg.OTPValidityWindow, log)
			r.With(sensitiveRL.Limit).Post("/functions/send-email-otp", fnH.SendEmailOTP)
		}

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/registration", regH.Get)
			r.Put("/registration/profile", regH.SubmitProfile)
			r.Put("/registration/preferences", regH.SubmitPreferences)
			r.Post("/registration/phone/{action}", regH.Phone)

			// Main application, only once onboarding is complete
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireStage(regSvc, domain.StageComplete))

				r.Get("/home", homeH.Get)
			})
		})
	})

	return r
}
