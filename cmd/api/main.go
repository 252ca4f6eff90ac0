package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/biteguide-api/internal/application/delivery"
	"github.com/biteguide-api/internal/application/otp"
	"github.com/biteguide-api/internal/application/sweeper"
	"github.com/biteguide-api/internal/config"
	"github.com/biteguide-api/internal/infrastructure/dynamo"
	"github.com/biteguide-api/internal/infrastructure/geocode"
	jwtinfra "github.com/biteguide-api/internal/infrastructure/jwt"
	"github.com/biteguide-api/internal/infrastructure/memory"
	"github.com/biteguide-api/internal/infrastructure/redisstore"
	resendinfra "github.com/biteguide-api/internal/infrastructure/resend"
	"github.com/biteguide-api/internal/infrastructure/smtp"
	"github.com/biteguide-api/internal/infrastructure/sns"
	"github.com/biteguide-api/internal/pkg/logger"
	transporthttp "github.com/biteguide-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	deps, err := buildDeps(ctx, cfg, zl)
	if err != nil {
		return err
	}

	sw := sweeper.New(sweeper.Deps{
		Target:   otp.NewService(otp.ServiceDeps{Store: deps.OTPRepo, Clock: deps.Clock, Log: zl}),
		Clock:    deps.Clock,
		Interval: cfg.OTPSweepInterval,
		Window:   cfg.OTPValidityWindow,
		Log:      zl,
	})
	go sw.Run(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	zl.Info("server stopped")
	return nil
}

func buildDeps(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*transporthttp.Deps, error) {
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("jwt provider: %w", err)
	}
	deps := &transporthttp.Deps{
		JWTProvider: jwtProvider,
		Clock:       clockwork.NewRealClock(),
		Log:         zl,
	}

	if err := wireStores(ctx, cfg, zl, deps); err != nil {
		return nil, err
	}
	if err := wireDelivery(ctx, cfg, zl, deps); err != nil {
		return nil, err
	}
	if cfg.GeocoderURL != "" {
		deps.Geocoder = geocode.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent, &http.Client{Timeout: 5 * time.Second})
	}
	return deps, nil
}

// wireStores picks the record stores. OTPs may live in a different backend
// from the rest.
func wireStores(ctx context.Context, cfg *config.Config, zl *zap.Logger, deps *transporthttp.Deps) error {
	needDynamo := cfg.StoreBackend == "dynamo" || cfg.OTPBackend == "dynamo"
	var dynamoClient *dynamodb.Client
	if needDynamo {
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("dynamo client: %w", err)
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, zl)
		dynamoClient = client
	}

	switch cfg.StoreBackend {
	case "dynamo":
		deps.UserRepo = dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
		deps.SessionRepo = dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions)
		deps.RegistrationRepo = dynamo.NewRegistrationRepo(dynamoClient, cfg.DynamoTables.Registrations)
	case "memory":
		deps.UserRepo = memory.NewUserRepo()
		deps.SessionRepo = memory.NewSessionRepo()
		deps.RegistrationRepo = memory.NewRegistrationRepo()
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.OTPBackend {
	case "dynamo":
		deps.OTPRepo = dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs)
	case "redis":
		rc, err := redisstore.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("redis client: %w", err)
		}
		repo, err := redisstore.NewOTPRepo(rc)
		if err != nil {
			return err
		}
		deps.OTPRepo = repo
	case "memory":
		deps.OTPRepo = memory.NewOTPRepo()
	default:
		return fmt.Errorf("unknown OTP_BACKEND %q", cfg.OTPBackend)
	}
	zl.Info("stores ready", zap.String("store", cfg.StoreBackend), zap.String("otp", cfg.OTPBackend))
	return nil
}

// wireDelivery picks the email channel and the SMS channel. The send-email-otp
// function is mounted whenever a real mailer is configured.
func wireDelivery(ctx context.Context, cfg *config.Config, zl *zap.Logger, deps *transporthttp.Deps) error {
	switch {
	case cfg.ResendAPIKey != "":
		m, err := resendinfra.NewMailer(cfg.ResendAPIKey, cfg.SMTPFrom)
		if err != nil {
			return fmt.Errorf("resend mailer: %w", err)
		}
		deps.Mailer = m
	case cfg.DeliveryMode == "smtp" || cfg.DeliveryMode == "http":
		deps.Mailer = smtp.NewMailer(cfg)
	}

	switch cfg.DeliveryMode {
	case "http":
		if cfg.DeliveryEndpointURL == "" {
			return errors.New("DELIVERY_ENDPOINT_URL is required when DELIVERY_MODE=http")
		}
		deps.EmailDelivery = delivery.NewHTTPGateway(cfg.DeliveryEndpointURL, &http.Client{Timeout: 10 * time.Second})
	case "smtp", "resend":
		if deps.Mailer == nil {
			return fmt.Errorf("DELIVERY_MODE=%s needs a configured mailer", cfg.DeliveryMode)
		}
		deps.EmailDelivery = delivery.NewMailGateway(deps.Mailer, cfg.OTPValidityWindow)
	case "log":
		deps.EmailDelivery = delivery.NewLogGateway(zl)
	default:
		return fmt.Errorf("unknown DELIVERY_MODE %q", cfg.DeliveryMode)
	}

	deps.PhoneDelivery = delivery.NewLogGateway(zl)
	if cfg.DeliveryMode != "log" {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			deps.PhoneDelivery = delivery.NewSMSGateway(sender, cfg.OTPValidityWindow)
		} else {
			zl.Warn("SNS sender not available, phone codes will be logged", zap.Error(err))
		}
	}
	zl.Info("delivery ready", zap.String("mode", cfg.DeliveryMode), zap.Bool("mailer", deps.Mailer != nil))
	return nil
}
