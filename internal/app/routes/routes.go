package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/paperarchive/internal/app/controllers"
	"github.com/yigit/paperarchive/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	paperController *controllers.PaperController,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	papers := v1.Group("/papers")
	{
		papers.GET("", paperController.ListPapers)
		papers.GET("/user/:uploaderId", paperController.ListPapersByUploader)
		papers.GET("/:id", paperController.GetPaper)
	}

	users := v1.Group("/users")
	{
		users.GET("/:id", userController.GetUser)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.Me)

		authenticated.POST("/papers", paperController.UploadPaper)
		authenticated.DELETE("/papers/:id", paperController.DeletePaper)

		authenticated.PUT("/users/:id", userController.UpdateUser)
	}
}
