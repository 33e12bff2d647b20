package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/auth"
)

// UserStore is the subset of the user repository seeding needs
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*appModels.User, error)
	CreateUser(ctx context.Context, user *appModels.User) error
}

// AdminAccount describes the administrator created on startup
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the configured admin account if it does not exist yet.
// Nothing happens when no email or password is configured.
func EnsureAdmin(ctx context.Context, users UserStore, admin AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		lgr.Debug().Msg("No admin account configured, skipping creation")
		return nil
	}

	existing, err := users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != appModels.RoleAdmin {
			lgr.Warn().Str("email", email).Msg("Configured admin email belongs to a non-admin account")
			return nil
		}
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}

	hashed, err := auth.HashPassword(admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Administrator"
	}

	user := &appModels.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     appModels.RoleAdmin,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Str("adminID", user.ID.String()).Msg("Default admin user created successfully")
	return nil
}
