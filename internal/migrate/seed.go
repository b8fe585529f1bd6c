package migrate

import (
	"context"
	"errors"

	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
	"gorm.io/gorm"
)

// SeedSuperadmin creates the operator account when no user holds username.
// An empty username skips seeding.
func SeedSuperadmin(ctx context.Context, db *gorm.DB, username, password string) error {
	log := config.WithContext(ctx).WithField("username", username)
	if username == "" {
		return nil
	}
	if password == "" {
		return errors.New("SUPERADMIN_PASSWORD is required to seed the superadmin")
	}

	var n int64
	if err := db.WithContext(ctx).Model(&user.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		log.Debug("Superadmin already present")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &user.User{
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleSuperadmin,
		FullName:     "Administrator",
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return err
	}
	log.Info("Superadmin seeded")
	return nil
}
