package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"lead-management-server/internal/auth"
	"lead-management-server/internal/config"
	"lead-management-server/internal/http/handlers"
	"lead-management-server/internal/http/middleware"
	"lead-management-server/internal/repo"
	"lead-management-server/internal/services"
)

type Dependencies struct {
	Config      *config.Config
	Users       repo.UserStore
	Tokens      *auth.TokenManager
	AuthService *services.AuthService
	LeadService *services.LeadService
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	userHandler := handlers.NewUserHandler(deps.AuthService, deps.Config.Cookie)
	leadHandler := handlers.NewLeadHandler(deps.LeadService)

	router.GET("/healthz", handlers.Health)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})

	authRequired := middleware.AuthRequired(deps.Tokens, deps.Users, deps.Config.Cookie.Name)

	api := router.Group("/api/v1")

	users := api.Group("/users")
	{
		public := users.Group("")
		public.Use(deps.RateLimiter.Middleware())
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/forgot-password", userHandler.ForgotPassword)
		public.POST("/reset/:resetToken", userHandler.ResetPassword)

		protected := users.Group("")
		protected.Use(authRequired)
		protected.POST("/logout", userHandler.Logout)
		protected.GET("/profile", userHandler.Profile)
		protected.PUT("/update-profile", userHandler.UpdateProfile)
		protected.POST("/change-password", userHandler.ChangePassword)
		protected.DELETE("/delete-profile", userHandler.DeleteProfile)
	}

	leads := api.Group("/leads")
	leads.Use(authRequired)
	{
		leads.POST("", leadHandler.Create)
		leads.GET("", leadHandler.List)
		leads.GET("/:id", leadHandler.GetByID)
		leads.PUT("/:id", leadHandler.Update)
		leads.DELETE("/:id", leadHandler.Delete)
	}

	return router
}
