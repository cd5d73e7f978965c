package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment with development defaults so main stays lean.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string

	Rating    Rating
	Lookup    Lookup
	RateLimit RateLimit
}

// RateLimit bounds requests per agent across all /v1 endpoints.
type RateLimit struct {
	PerAgent int // requests per window, 0 disables
	Window   time.Duration
}

// Rating holds the conventions the premium calculator needs at wiring time.
type Rating struct {
	// FlatInPercentageBase controls whether flat discount/surcharge amounts
	// join the base that percentage adjustments are computed against. The
	// shipped convention is false: percentages apply to the pre-adjustment
	// subtotal only. See DESIGN.md.
	FlatInPercentageBase bool
}

// Lookup holds collaborator lookup settings.
type Lookup struct {
	ProviderBaseURL string
	// CacheTTL bounds staleness of decode/valuation/safety lookups.
	CacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          getenv("LANEWISE_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("LANEWISE_POSTGRES_DSN"),
		RedisURL:      os.Getenv("LANEWISE_REDIS_URL"),
		KafkaTopic:    getenv("LANEWISE_KAFKA_TOPIC", "lanewise.lifecycle"),
		JWTSigningKey: getenv("LANEWISE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Rating: Rating{
			FlatInPercentageBase: os.Getenv("LANEWISE_FLAT_IN_PCT_BASE") == "true",
		},
		Lookup: Lookup{
			ProviderBaseURL: getenv("LANEWISE_LOOKUP_URL", "http://localhost:9090"),
			CacheTTL:        24 * time.Hour,
		},
		RateLimit: RateLimit{
			PerAgent: getenvInt("LANEWISE_RATE_LIMIT", 120),
			Window:   time.Minute,
		},
	}
	if brokers := os.Getenv("LANEWISE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
