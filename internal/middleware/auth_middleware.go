package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/services"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's identity in the gin context.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RoleRequired allows only callers holding role. Must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		if actor.Role != role {
			HandleAPIError(c, apperrors.NewForbiddenError("You don't have sufficient permissions for this operation"))
			return
		}
		c.Next()
	}
}

// CurrentActor returns the authenticated caller stored by JWTAuth
func CurrentActor(c *gin.Context) (services.Actor, error) {
	raw, ok := c.Get(ContextUserID)
	if !ok {
		return services.Actor{}, apperrors.ErrUnauthorized
	}
	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return services.Actor{}, apperrors.ErrUnauthorized
	}

	role, _ := c.Get(ContextRole)
	roleType, _ := role.(models.RoleType)
	return services.Actor{UserID: userID, Role: roleType}, nil
}
