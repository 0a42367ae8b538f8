package config

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fytours/tourdash/internal/store"
)

// CreateDefaultAdmin seeds the dashboard admin account when none exists, so a
// fresh deployment can log in with the configured credentials.
func CreateDefaultAdmin(cfg *Config, db *store.DB) error {
	ctx := context.Background()

	var count int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", cfg.AdminEmail).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check existing admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO users (name, email, password_hash, role, status, approved_on)
		VALUES ($1, $2, $3, $4, 'Active', now())
	`, "Admin User", cfg.AdminEmail, string(hashedPassword), "admin")
	if err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}
	return nil
}
