package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	users      UserStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a user account with the default role and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is a required field")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    normalizeEmail(req.Email),
		Password: hashed,
		Role:     models.RoleUser,
	}
	if uni := strings.TrimSpace(req.University); uni != "" {
		user.University = &uni
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to create user")
		}
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User registered")
	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Str("userID", user.ID.String()).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate access token")
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		User: dto.NewUserResponse(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
