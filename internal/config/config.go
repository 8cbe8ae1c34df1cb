package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	MaxDBConns     int
	LogLevel       string
	Debug          bool
	ServiceName    string
	Environment    string
	Hostname       string
	Port           string
	WorkerCount    int
	BatchSize      int
	JwtSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	PhotoRoot      string
	SchemaDir      string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	databaseURL := env("DATABASE_URL", "")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	jwtSecret := env("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	allowedOrigins := []string{"*"}
	if ao := env("ALLOWED_ORIGINS", ""); ao != "" {
		allowedOrigins = []string{}
		for _, origin := range strings.Split(ao, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	workerCount, err := envInt(env, "WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt(env, "BATCH_SIZE", 100)
	if err != nil {
		return nil, err
	}
	maxConns, err := envInt(env, "DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	burst, err := envInt(env, "RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}

	maxUpload, err := strconv.ParseInt(env("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer")
	}

	rps, err := strconv.ParseFloat(env("RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number")
	}

	ttl, err := time.ParseDuration(env("TOKEN_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be a positive duration")
	}

	return &Config{
		DatabaseURL:    databaseURL,
		MaxDBConns:     maxConns,
		LogLevel:       env("LOG_LEVEL", "info"),
		Debug:          env("DEBUG", "false") == "true",
		ServiceName:    env("SERVICE_NAME", "tripshare"),
		Environment:    env("ENVIRONMENT", "development"),
		Hostname:       env("HOSTNAME", "tripshare"),
		Port:           env("PORT", "8080"),
		WorkerCount:    workerCount,
		BatchSize:      batchSize,
		JwtSecret:      jwtSecret,
		TokenTTL:       ttl,
		AllowedOrigins: allowedOrigins,
		PhotoRoot:      env("PHOTO_ROOT", "./data/photos"),
		SchemaDir:      env("SCHEMA_DIR", ""),
		MaxUploadBytes: maxUpload,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}, nil
}

func envInt(env func(string, string) string, key string, def int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

// ToolConfig is the subset of settings the operations CLI needs. It does not
// require the HTTP-only settings such as JWT_SECRET.
type ToolConfig struct {
	DatabaseURL string
	MaxDBConns  int
	LogLevel    string
	Debug       bool
	WorkerCount int
	BatchSize   int
	PhotoRoot   string
	SchemaDir   string
}

func LoadToolConfig() (*ToolConfig, error) {
	_ = godotenv.Load()
	return ToolFromEnv(os.Getenv)
}

func ToolFromEnv(getenv func(string) string) (*ToolConfig, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	workerCount, err := envInt(env, "WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt(env, "BATCH_SIZE", 100)
	if err != nil {
		return nil, err
	}
	maxConns, err := envInt(env, "DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}

	return &ToolConfig{
		DatabaseURL: env("DATABASE_URL", ""),
		MaxDBConns:  maxConns,
		LogLevel:    env("LOG_LEVEL", "info"),
		Debug:       env("DEBUG", "false") == "true",
		WorkerCount: workerCount,
		BatchSize:   batchSize,
		PhotoRoot:   env("PHOTO_ROOT", "./data/photos"),
		SchemaDir:   env("SCHEMA_DIR", ""),
	}, nil
}
