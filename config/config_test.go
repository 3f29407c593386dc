package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_DRIVER", "DATABASE_URL", "DATABASE_NAME", "JWT_SECRET", "JWT_EXPIRATION",
		"PORT", "LOG_LEVEL", "LOG_FILE", "CORS_ALLOWED_ORIGINS", "PUBLIC_READS",
		"SEED_OWNER_EMAIL", "SEED_OWNER_PASSWORD", "SEED_OWNER_NAME", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.DatabaseDriver != DriverMongo {
		t.Errorf("DatabaseDriver = %s, want mongo", cfg.DatabaseDriver)
	}
	if cfg.ServerPort != "8000" {
		t.Errorf("ServerPort = %s, want 8000", cfg.ServerPort)
	}
	if cfg.JWTExpiration != time.Hour {
		t.Errorf("JWTExpiration = %v, want 1h", cfg.JWTExpiration)
	}
	if !cfg.PublicReads {
		t.Error("PublicReads should default to true")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.SeedOwner.Enabled() {
		t.Error("seed owner should be disabled without credentials")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("JWT_EXPIRATION", "30m")
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_READS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SEED_OWNER_EMAIL", "owner@x.com")
	t.Setenv("SEED_OWNER_PASSWORD", "secret12")

	cfg := Load()

	if cfg.DatabaseDriver != DriverPostgres {
		t.Errorf("DatabaseDriver = %s, want postgres", cfg.DatabaseDriver)
	}
	if cfg.JWTExpiration != 30*time.Minute {
		t.Errorf("JWTExpiration = %v, want 30m", cfg.JWTExpiration)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %s, want 9090", cfg.ServerPort)
	}
	if cfg.PublicReads {
		t.Error("PublicReads should be false")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.SeedOwner.Enabled() {
		t.Error("seed owner should be enabled")
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "soon")

	cfg := Load()

	if cfg.JWTExpiration != time.Hour {
		t.Errorf("JWTExpiration = %v, want 1h", cfg.JWTExpiration)
	}
}
