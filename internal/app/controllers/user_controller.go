package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/app/services"
	"github.com/yigit/paperarchive/internal/middleware"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
)

// UserService is the profile behaviour the controller depends on
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor services.Actor, id uuid.UUID, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*dto.UserResponse, error)
}

// UserController handles user profile endpoints
type UserController struct {
	userService UserService
}

// NewUserController creates a new UserController
func NewUserController(userService UserService) *UserController {
	return &UserController{userService: userService}
}

// GetUser returns a public profile
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, err := parseUUIDParam(ctx, "id", "Invalid user ID")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	user, err := c.userService.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// UpdateUser edits a profile from a multipart form with an optional avatar
// @Summary Update user profile
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param name formData string false "Display name"
// @Param university formData string false "University"
// @Param avatar formData file false "Profile picture"
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} dto.ErrorResponse "Not your profile"
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	id, err := parseUUIDParam(ctx, "id", "Invalid user ID")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	avatar, err := ctx.FormFile("avatar")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("avatar", "Invalid multipart form"))
			return
		}
		avatar = nil
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), actor, id, &req, avatar)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}
