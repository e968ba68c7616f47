package config

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// minSigningKeyLen is the smallest key accepted for HS256. Shorter keys
// are rejected at startup, never at request time.
const minSigningKeyLen = 32

type GateMode string

const (
	GateModePublic GateMode = "public"
	GateModeAdmin  GateMode = "admin"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DatabaseURL string

	SigningKey        []byte
	AccessTokenTTL    time.Duration
	RefreshMultiplier int
	ConfirmTokenTTL   time.Duration

	KafkaBrokers    []string
	ConfirmLinkBase string

	Mode GateMode
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	key, err := decodeSigningKey(os.Getenv("JWT_SECRET"))
	if err != nil {
		return nil, err
	}

	mode := GateMode(EnvDefault("GATE_MODE", string(GateModePublic)))
	if mode != GateModePublic && mode != GateModeAdmin {
		return nil, fmt.Errorf("unknown GATE_MODE %q", mode)
	}

	return &Config{
		ServerAddr: EnvDefault("SERVER_ADDR", ":8080"),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SigningKey:        key,
		AccessTokenTTL:    EnvDurationDefault("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshMultiplier: EnvIntDefault("REFRESH_MULTIPLIER", 12),
		ConfirmTokenTTL:   EnvDurationDefault("CONFIRM_TOKEN_TTL", 15*time.Minute),

		KafkaBrokers:    CSV(os.Getenv("KAFKA_BROKERS")),
		ConfirmLinkBase: EnvDefault("CONFIRM_LINK_BASE", "http://localhost:8080/api/v1.0/auth/confirm-account"),

		Mode: mode,
	}, nil
}

func decodeSigningKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("missing required env JWT_SECRET")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET is not valid base64: %w", err)
	}
	if len(key) < minSigningKeyLen {
		return nil, fmt.Errorf("JWT_SECRET decodes to %d bytes, need at least %d", len(key), minSigningKeyLen)
	}
	return key, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
