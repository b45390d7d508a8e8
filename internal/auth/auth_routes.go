package auth

import (
	"leavehub/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	// Credential endpoints are rate limited per IP; everything else in the
	// API is limited per user after authentication.
	public := r.Group("/auth")
	public.Use(middleware.RateLimitByIP(rate.Limit(5), 10))
	{
		public.POST("/signup", handler.Signup)
		public.POST("/login", handler.Login)
		public.POST("/refresh", handler.Refresh)
	}

	private := r.Group("/auth")
	private.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		private.GET("/me", handler.Me)
	}
}
