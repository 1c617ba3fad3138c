package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	FrontendURL        string
	JWTSecret          string
	SessionCookieName  string
	SessionTTL         time.Duration
	LoginTimeout       time.Duration
	StubLoginDelay     time.Duration
	RateLimitRPS       float64
	DatabaseURL        string
	SessionStorePath   string
	RedisURL           string
	OAuthRedirectURL   string
	GoogleClientID     string
	GoogleClientSecret string
}

func Load() Config {
	return Config{
		Port:               getEnv("PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "shopfloor_session"),
		SessionTTL:         getDuration("SESSION_TTL", 24*time.Hour),
		LoginTimeout:       getDuration("LOGIN_TIMEOUT", 10*time.Second),
		StubLoginDelay:     getDuration("STUB_LOGIN_DELAY", 400*time.Millisecond),
		RateLimitRPS:       getFloat("RATE_LIMIT_RPS", 5),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SessionStorePath:   getEnv("SESSION_STORE_PATH", "shopfloor-session.db"),
		RedisURL:           os.Getenv("REDIS_URL"),
		OAuthRedirectURL:   os.Getenv("OAUTH_REDIRECT_URL"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
