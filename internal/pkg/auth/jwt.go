package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Claims defines JWT token content
type Claims struct {
	UserID uuid.UUID       `json:"userId"`
	Email  string          `json:"email"`
	Role   models.RoleType `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token holder has the admin role
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// GenerateAccessToken signs an HS256 access token for user and returns it with
// its lifetime in seconds.
func (s *JWTService) GenerateAccessToken(user *models.User) (string, int, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create access token: %w", err)
	}
	return signed, int(s.config.AccessTokenExp.Seconds()), nil
}

// ValidateToken parses tokenString and returns its claims. Expired tokens yield
// apperrors.ErrTokenExpired; anything else unusable yields apperrors.ErrTokenInvalid.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if rest, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		token := strings.TrimSpace(rest)
		if token == "" {
			return "", apperrors.ErrTokenInvalid
		}
		return token, nil
	}

	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", apperrors.ErrUnauthorized
	}
	// a bare token is accepted as well
	return authHeader, nil
}
