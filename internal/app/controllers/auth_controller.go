// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/middleware"
)

// AuthService is the authentication behaviour the controller depends on
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

// AuthController handles authentication related operations
type AuthController struct {
	authService AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// Login handles user login
// @Summary User login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	user, err := c.authService.Me(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}
