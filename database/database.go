package database

import (
	"context"
	"errors"
	"fmt"

	"taskhub/config"
	"taskhub/logging"
	"taskhub/models"

	"golang.org/x/crypto/bcrypt"
)

// Open returns the Store selected by cfg.DatabaseDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	case config.DriverPostgres:
		return OpenPostgres(cfg.DatabaseURL, logging.Logger)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// SeedOwner creates the configured owner account if no user holds its email.
func SeedOwner(ctx context.Context, store UserStore, seed config.SeedOwner) error {
	if !seed.Enabled() {
		return nil
	}

	email := models.NormalizeEmail(seed.Email)
	_, err := store.UserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	owner := models.User{
		Name:         seed.Name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleOwner,
	}
	if err := store.CreateUser(ctx, &owner); err != nil {
		return err
	}

	logging.Logger.WithField("email", email).Info("Seeded owner account")
	return nil
}
