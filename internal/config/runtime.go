package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "petcare.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "24h"
	defaultCountry         = "AR"
	defaultGatewayBaseURL  = "https://api.mercadopago.com"
	defaultGatewayTimeout  = "15s"
	defaultAMQPExchange    = "petcare.payments"
	defaultShutdownTimeout = "10s"
	defaultCORSOrigins     = "http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000,http://127.0.0.1:5173"
)

type RuntimeConfig struct {
	AppEnv          string
	HTTPAddr        string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	ShutdownTimeout time.Duration

	DefaultCountry  string
	GatewayBaseURL  string
	GatewayTimeout  time.Duration
	GatewaySandbox  bool
	NotificationURL string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
	WebhookSecret   string

	AMQPURL      string
	AMQPExchange string

	CORSAllowedOrigins []string
}

func LoadRuntimeConfig() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("APP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.DefaultCountry = strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_COUNTRY", defaultCountry)))
	cfg.GatewayBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("MP_BASE_URL", defaultGatewayBaseURL)), "/")
	cfg.GatewaySandbox = parseBoolEnv("MP_SANDBOX", "false")
	cfg.NotificationURL = strings.TrimSpace(os.Getenv("MP_NOTIFICATION_URL"))
	cfg.SuccessURL = strings.TrimSpace(os.Getenv("MP_SUCCESS_URL"))
	cfg.FailureURL = strings.TrimSpace(os.Getenv("MP_FAILURE_URL"))
	cfg.PendingURL = strings.TrimSpace(os.Getenv("MP_PENDING_URL"))
	cfg.WebhookSecret = strings.TrimSpace(os.Getenv("MP_WEBHOOK_SECRET"))
	cfg.AMQPURL = strings.TrimSpace(os.Getenv("AMQP_URL"))
	cfg.AMQPExchange = strings.TrimSpace(getEnv("AMQP_EXCHANGE", defaultAMQPExchange))
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.GatewayTimeout, err = parseDurationEnv("GATEWAY_TIMEOUT", defaultGatewayTimeout)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("runtime config: env=%s addr=%s default_country=%s gateway_timeout=%s sandbox=%t amqp=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.DefaultCountry, cfg.GatewayTimeout, cfg.GatewaySandbox, cfg.AMQPURL != "")

	return cfg, nil
}

func validateConfig(cfg *RuntimeConfig) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if len(cfg.DefaultCountry) != 2 {
		return fmt.Errorf("DEFAULT_COUNTRY must be a two-letter country code")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.NotificationURL == "" {
			return fmt.Errorf("in prod/release MP_NOTIFICATION_URL must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
