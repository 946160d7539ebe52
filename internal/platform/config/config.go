package config

import (
	"os"
	"time"
)

// Server captures process-level configuration for the gateway.
type Server struct {
	Addr          string
	PublicOrigin  string
	JWTSigningKey string
	TokenTTL      time.Duration

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers string

	LedgerBaseURL string
	ScanCacheTTL  time.Duration
}

const (
	// Session tokens expire 24h after issuance; expiry is the only
	// termination mechanism, there is no server-side revocation.
	defaultTokenTTL = 24 * time.Hour

	// Scannable encodings are pure functions of the credential ID, so a
	// generous cache TTL is safe.
	defaultScanCacheTTL = time.Hour
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CREDGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	origin := os.Getenv("CREDGATE_PUBLIC_ORIGIN")
	if origin == "" {
		origin = "http://localhost:8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		PublicOrigin:  origin,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      durationFromEnv("TOKEN_TTL", defaultTokenTTL),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		LedgerBaseURL: os.Getenv("LEDGER_BASE_URL"),
		ScanCacheTTL:  durationFromEnv("SCAN_CACHE_TTL", defaultScanCacheTTL),
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
