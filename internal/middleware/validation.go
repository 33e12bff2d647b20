package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/paperarchive/internal/pkg/validation"
)

// HandleBindingError reports a failed ShouldBind* call as a 400 naming the
// first offending field.
func HandleBindingError(c *gin.Context, err error) {
	HandleAPIError(c, validation.ToValidationError(err))
}
