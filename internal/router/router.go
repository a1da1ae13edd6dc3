package router

import (
	"net/http"
	"time"

	"photohunt/config"
	"photohunt/internal/handler"
	"photohunt/internal/middleware"
	"photohunt/internal/paypal"
	"photohunt/internal/repository"
	"photohunt/internal/service"
	"photohunt/internal/ws"
	"photohunt/pkg/cloudinary"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// New wires repositories, services, and handlers into the HTTP surface.
func New(cfg *config.Config, db *gorm.DB, cld cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics())

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	authService := service.NewAuthService(cfg, userRepo)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, eventRepo)
	verifier := paypal.NewVerifier(cfg.PayPal, nil)
	hub := ws.NewHub()

	authHandler := handler.NewAuthHandler(authService, userRepo)
	oauthHandler := handler.NewGoogleOAuthHandler(&cfg.OAuth, authService)
	eventHandler := handler.NewEventHandler(eventRepo)
	bookingHandler := handler.NewBookingHandler(bookingRepo, eventRepo)
	webhookHandler := handler.NewPayPalWebhookHandler(verifier, webhookRepo, paymentRepo, bookingRepo, auditRepo, hub)
	paymentsHandler := handler.NewPaymentsViewHandler(paymentService)
	adminHandler := handler.NewAdminHandler(userRepo, eventRepo, bookingRepo, paymentRepo, webhookRepo, auditRepo)
	uploadHandler := handler.NewUploadHandler(cld)

	authLimiter := middleware.NewInMemoryRateLimiter(10, time.Minute)
	webhookLimiter := middleware.NewInMemoryRateLimiter(120, time.Minute)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(authLimiter))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/google", oauthHandler.Redirect)
			auth.GET("/google/callback", oauthHandler.Callback)
			auth.POST("/google/token", oauthHandler.TokenLogin)
			auth.GET("/me", middleware.AuthRequired(&cfg.JWT), authHandler.Me)
			auth.POST("/change-password", middleware.AuthRequired(&cfg.JWT), authHandler.ChangePassword)
		}

		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.Get)

		bookings := api.Group("/bookings", middleware.AuthRequired(&cfg.JWT))
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.ListMine)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
		}

		api.POST("/webhooks/paypal", middleware.RateLimit(webhookLimiter), webhookHandler.Handle)

		admin := api.Group("/admin", middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id", adminHandler.PatchUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.GET("/events", eventHandler.ListAll)
			admin.POST("/events", eventHandler.Create)
			admin.PUT("/events/:id", eventHandler.Update)
			admin.DELETE("/events/:id", eventHandler.Delete)
			admin.POST("/uploads/event-image", uploadHandler.UploadEventImage)
			admin.GET("/payments", paymentsHandler.View)
			admin.GET("/webhook-events", adminHandler.ListWebhookEvents)
			admin.GET("/audit-log", adminHandler.ListAuditLog)
		}
	}

	r.GET("/ws/payments", ws.UpgradePaymentsWS(&cfg.JWT, hub))

	return r
}
