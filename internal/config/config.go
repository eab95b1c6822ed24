package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds the interview backend configuration.
type ServerConfig struct {
	Port          string
	Provider      string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	// SessionTTL bounds how long an untouched live session survives.
	SessionTTL    time.Duration
	SweepSchedule string
}

// AgentConfig holds the candidate-session agent configuration.
type AgentConfig struct {
	BackendURL    string
	VoiceProvider string
}

func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:          getEnvOrDefault("PORT", "8000"),
		Provider:      getEnvOrDefault("AI_PROVIDER", "gemini"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 2*time.Hour),
		SweepSchedule: getEnvOrDefault("SESSION_SWEEP_SCHEDULE", "*/10 * * * *"),
	}
	if err := validateServerConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadAgentConfig() (*AgentConfig, error) {
	cfg := &AgentConfig{
		BackendURL:    getEnvOrDefault("BACKEND_URL", "http://localhost:8000"),
		VoiceProvider: getEnvOrDefault("VOICE_PROVIDER", "console"),
	}
	if cfg.BackendURL == "" {
		return nil, errors.New("BACKEND_URL must not be empty")
	}
	return cfg, nil
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + cfg.Provider + ". Currently supported: gemini")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// PostgresDSN assembles the report database DSN from the environment.
func PostgresDSN() string {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "postgres")
	dbname := getEnvOrDefault("POSTGRES_DB", "postgres")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	sslmode := getEnvOrDefault("POSTGRES_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + password +
		" dbname=" + dbname + " port=" + port + " sslmode=" + sslmode
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
