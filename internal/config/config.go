package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	StoreBackend string // "dynamo" | "memory"
	OTPBackend   string // "dynamo" | "redis" | "memory"

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTPValidityWindow time.Duration
	OTPSweepInterval  time.Duration

	DeliveryMode        string // "http" | "smtp" | "resend" | "log"
	DeliveryEndpointURL string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	ResendAPIKey string
	SNSRegion    string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	GeocoderURL       string
	GeocoderUserAgent string

	AllowedOrigins []string // CORS allowed origins
	TrustedProxies []string // CIDRs or addresses whose X-Forwarded-For is believed

	LogLevel string
	LogDev   bool
	LogFile  string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	OTPs          string
	Sessions      string
	Registrations string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPs:          getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Registrations: getEnv("DYNAMO_TABLE_REGISTRATIONS", "registrations"),
		},

		StoreBackend: getEnv("STORE_BACKEND", "dynamo"),
		OTPBackend:   getEnv("OTP_BACKEND", "dynamo"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTPValidityWindow: getEnvDuration("OTP_VALIDITY_WINDOW", 5*time.Minute),
		OTPSweepInterval:  getEnvDuration("OTP_SWEEP_INTERVAL", 5*time.Minute),

		DeliveryMode:        getEnv("DELIVERY_MODE", "log"),
		DeliveryEndpointURL: getEnv("DELIVERY_ENDPOINT_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@biteguide.app"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/reverse"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "biteguide-api/1.0"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustedProxies: strings.Split(getEnv("TRUSTED_PROXIES", ""), ","),

		LogLevel: getEnv("LOG_LEVEL", ""),
		LogDev:   getEnvBool("LOG_DEV", false),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
