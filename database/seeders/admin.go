package seeders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates the admin account named by ADMIN_EMAIL and
// ADMIN_PASSWORD. Admin is never reachable through a role transition, so
// this is the supported way to get one. It is a no-op when ADMIN_EMAIL is
// unset or the account already exists.
func SeedAdmin(ctx context.Context, db *gorm.DB) error {
	email := config.AdminEmail()
	if email == "" {
		logger.Info("admin seeder skipped: ADMIN_EMAIL not set")
		return nil
	}
	password := config.AdminPassword()
	if len(password) < 6 {
		return errors.New("ADMIN_PASSWORD must be at least 6 characters")
	}

	users := repositories.NewUserRepository(db)
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		logger.Info("admin seeder skipped: account exists", "email", email)
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := auth.NewHasher(config.BcryptCost()).Hash(password)
	if err != nil {
		return err
	}
	admin := models.NewUser(config.AdminName(), email, hash, models.RoleAdmin)
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("admin account created", "user_id", admin.ID)
	return nil
}
