package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/logger"
)

// --- Central Error Handling ---

// HandleAPIError maps err to a status code and writes the standard error body.
// Store and unknown errors are logged and reported without internal detail.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, ve.Message).WithField(ve.Field)
		if len(ve.Fields) > 1 {
			detail = detail.WithDetails(ve.Fields)
		}
		return http.StatusBadRequest, detail
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOr(err, "Resource not found"))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOr(err, "Permission denied"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, messageOr(err, "Resource already exists"))
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Server error")
	}
}

// messageOr returns the caller-facing message of a CustomError, or fallback
func messageOr(err error, fallback string) string {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
