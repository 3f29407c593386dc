package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	DatabaseDriver  string
	DatabaseURL     string
	DatabaseName    string
	JWTSecret       string
	JWTExpiration   time.Duration
	ServerPort      string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFile         string
	CORSOrigins     []string
	PublicReads     bool
	SeedOwner       SeedOwner
}

// SeedOwner describes the owner account created at startup when absent.
type SeedOwner struct {
	Name     string
	Email    string
	Password string
}

func (s SeedOwner) Enabled() bool {
	return s.Email != "" && s.Password != ""
}

// Load reads the optional .env file and then the process environment.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", DriverMongo)),
		DatabaseURL:     getEnv("DATABASE_URL", "mongodb://localhost:27017"),
		DatabaseName:    getEnv("DATABASE_NAME", "taskhub"),
		JWTSecret:       getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiration:   getDuration("JWT_EXPIRATION", time.Hour),
		ServerPort:      getEnv("PORT", "8000"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		CORSOrigins:     getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		PublicReads:     getBool("PUBLIC_READS", true),
		SeedOwner: SeedOwner{
			Name:     getEnv("SEED_OWNER_NAME", "Owner"),
			Email:    getEnv("SEED_OWNER_EMAIL", ""),
			Password: getEnv("SEED_OWNER_PASSWORD", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
