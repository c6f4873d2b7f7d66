package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lingvo-market/internal/config"
	"github.com/ignatzorin/lingvo-market/internal/http/handlers"
	"github.com/ignatzorin/lingvo-market/internal/http/middleware"
	"github.com/ignatzorin/lingvo-market/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	projectHandler *handlers.ProjectHandler,
	bidHandler *handlers.BidHandler,
	transactionHandler *handlers.TransactionHandler,
	reviewHandler *handlers.ReviewHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/files", http.Dir(cfg.FileStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/projects", projectHandler.List)
	api.GET("/users/:id", middleware.UUIDValidator("id"), authHandler.GetProfile)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListByUser)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/sessions", authHandler.ListSessions)
		protected.DELETE("/auth/sessions/:id", authHandler.RevokeSession)

		protected.PUT("/users/me/languages", authHandler.UpdateLanguages)

		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/my", projectHandler.ListMine)

		projects := protected.Group("/projects/:id")
		projects.Use(middleware.UUIDValidator("id"))
		{
			projects.PUT("", projectHandler.Update)
			projects.DELETE("", projectHandler.Delete)
			projects.PUT("/complete", projectHandler.Complete)
			projects.PUT("/cancel", projectHandler.Cancel)

			projects.POST("/bids", bidHandler.Submit)
			projects.GET("/bids", bidHandler.ListByProject)

			projects.POST("/payment-intent", transactionHandler.CreateIntent)
			projects.POST("/confirm-payment", transactionHandler.Confirm)
			projects.GET("/transaction", transactionHandler.GetByProject)

			projects.POST("/reviews", reviewHandler.Create)
			projects.GET("/reviews", reviewHandler.ListByProject)
			projects.GET("/can-review", reviewHandler.CanReview)
		}

		protected.GET("/bids/my", bidHandler.ListMine)

		bids := protected.Group("/bids/:id")
		bids.Use(middleware.UUIDValidator("id"))
		{
			bids.PUT("/accept", bidHandler.Accept)
			bids.PUT("/reject", bidHandler.Reject)
		}

		transactions := protected.Group("/transactions/:id")
		transactions.Use(middleware.UUIDValidator("id"))
		{
			transactions.POST("/release", transactionHandler.Release)
			transactions.POST("/refund", transactionHandler.Refund)
		}

		reviews := protected.Group("/reviews/:id")
		reviews.Use(middleware.UUIDValidator("id"))
		{
			reviews.PUT("", reviewHandler.Update)
		}
	}

	// Публичная карточка проекта регистрируется после защищённой группы,
	// чтобы не пересекаться с /projects/my
	api.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)

	return r
}
