package database

import (
	"context"
	"testing"

	"taskhub/config"
	"taskhub/models"

	"golang.org/x/crypto/bcrypt"
)

func TestOpenMemoryDriver(t *testing.T) {
	store, err := Open(context.Background(), &config.Config{DatabaseDriver: config.DriverMemory})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Open returned %T, want *MemoryStore", store)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{DatabaseDriver: "sqlite"}); err == nil {
		t.Error("Open with unknown driver succeeded, want error")
	}
}

func TestSeedOwner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seed := config.SeedOwner{Name: "Root", Email: " Owner@Example.com ", Password: "secret123"}

	if err := SeedOwner(ctx, store, seed); err != nil {
		t.Fatalf("SeedOwner: %v", err)
	}
	owner, err := store.UserByEmail(ctx, "owner@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if owner.Role != models.RoleOwner {
		t.Errorf("Role = %s, want owner", owner.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	// Second run is a no-op.
	if err := SeedOwner(ctx, store, seed); err != nil {
		t.Fatalf("SeedOwner again: %v", err)
	}
	if len(store.users) != 1 {
		t.Errorf("users = %d, want 1", len(store.users))
	}
}

func TestSeedOwnerDisabled(t *testing.T) {
	store := NewMemoryStore()
	if err := SeedOwner(context.Background(), store, config.SeedOwner{}); err != nil {
		t.Fatalf("SeedOwner: %v", err)
	}
	if len(store.users) != 0 {
		t.Errorf("users = %d, want 0", len(store.users))
	}
}
