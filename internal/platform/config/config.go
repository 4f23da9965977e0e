// Package config builds runtime configuration from environment variables so
// main stays lean. Every backing service is optional: with no Redis, Postgres,
// or Kafka configured the server runs fully in-memory.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	JWTTokenTTL   time.Duration
}

// Registry captures registry bootstrap configuration.
type Registry struct {
	// Deployer receives every role at startup. Required.
	Deployer string
	// EnforceAllowList turns allow-list enforcement on from the first request.
	EnforceAllowList bool
}

// Redis configures the compliance oracle backend.
type Redis struct {
	URL      string
	AllowKey string
	DenyKey  string
}

// Postgres configures the attribute store backend.
type Postgres struct {
	DSN string
}

// Kafka configures the audit event sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is the full runtime configuration.
type Config struct {
	Server   Server
	Registry Registry
	Redis    Redis
	Postgres Postgres
	Kafka    Kafka
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          getEnv("GEMREG_ADDR", ":8080"),
			JWTSigningKey: getEnv("GEMREG_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     getEnv("GEMREG_JWT_ISSUER", "gemreg"),
			JWTAudience:   getEnv("GEMREG_JWT_AUDIENCE", "gemreg-api"),
			JWTTokenTTL:   getDuration("GEMREG_JWT_TOKEN_TTL", time.Hour),
		},
		Registry: Registry{
			Deployer:         os.Getenv("GEMREG_DEPLOYER"),
			EnforceAllowList: os.Getenv("GEMREG_ENFORCE_ALLOW_LIST") == "true",
		},
		Redis: Redis{
			URL:      os.Getenv("GEMREG_REDIS_URL"),
			AllowKey: getEnv("GEMREG_REDIS_ALLOW_KEY", "compliance:allow"),
			DenyKey:  getEnv("GEMREG_REDIS_DENY_KEY", "compliance:deny"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("GEMREG_POSTGRES_DSN"),
		},
		Kafka: Kafka{
			Brokers: splitList(os.Getenv("GEMREG_KAFKA_BROKERS")),
			Topic:   getEnv("GEMREG_KAFKA_TOPIC", "gemreg.audit"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
