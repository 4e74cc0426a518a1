package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sceneyard/sceneyard/internal/auth"
	"github.com/sceneyard/sceneyard/internal/cache"
	"github.com/sceneyard/sceneyard/internal/config"
	"github.com/sceneyard/sceneyard/internal/database"
	"github.com/sceneyard/sceneyard/internal/handler"
	"github.com/sceneyard/sceneyard/internal/mailer"
	"github.com/sceneyard/sceneyard/internal/middleware"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/internal/storage"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Redis backs both the like-count cache and the rate limiter
	likeCache, err := cache.NewRedisLikeCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer likeCache.Close()

	// Object storage is optional in local development; endpoints answer
	// 503 until it is configured
	storageClient, err := storage.NewClient(context.Background(), cfg)
	if err != nil {
		log.Printf("Object storage not available: %v", err)
		storageClient = nil
	}

	provider := auth.NewProvider(cfg)
	contactMailer := mailer.New(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailTo)

	// Services
	authService := service.NewAuthService(database.DB, cfg.JWTSecret, cfg.JWTExpiry, provider.Name())
	catalogService := service.NewCatalogService(database.DB)
	templateService := service.NewTemplateService(database.DB)
	engagementService := service.NewEngagementService(database.DB, likeCache)
	contactService := service.NewContactService(database.DB, contactMailer)

	// Handlers
	cookieMaxAge := int(cfg.JWTExpiry.Seconds())
	authHandler := handler.NewAuthHandler(authService, provider, cookieMaxAge, cfg.IsProduction(), cfg.PostLoginRedirectURL)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	templateHandler := handler.NewTemplateHandler(templateService, engagementService)
	engagementHandler := handler.NewEngagementHandler(engagementService)
	storageHandler := handler.NewStorageHandler(storageClient, engagementService)
	contactHandler := handler.NewContactHandler(contactService)
	adminHandler := handler.NewAdminHandler(authService)

	rateLimiter := middleware.NewRateLimiter(likeCache.Client(), middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")

	// Public routes
	api.GET("/auth/login", rateLimiter.Middleware(), authHandler.Login)
	api.GET("/auth/callback", rateLimiter.Middleware(), authHandler.Callback)
	api.GET("/categories", catalogHandler.ListCategories)
	api.GET("/tags", catalogHandler.ListTags)
	api.GET("/templates", middleware.OptionalAuth(cfg.JWTSecret), templateHandler.List)
	api.GET("/templates/:id", templateHandler.Get)
	api.POST("/contact", rateLimiter.Middleware(), contactHandler.Submit)
	api.GET("/storage/stream", middleware.OptionalAuth(cfg.JWTSecret), storageHandler.Stream)
	api.GET("/storage/public-url", storageHandler.PublicURL)

	// Session routes
	session := api.Group("")
	session.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		session.GET("/auth/me", authHandler.Me)
		session.POST("/auth/logout", authHandler.Logout)
		session.POST("/likes", engagementHandler.ToggleLike)
		session.GET("/likes", engagementHandler.ListLikes)
		session.POST("/downloads", engagementHandler.RecordDownload)
		session.GET("/downloads", engagementHandler.DownloadHistory)
	}

	// Admin routes
	admin := api.Group("")
	admin.Use(middleware.RequireAuth(cfg.JWTSecret), middleware.RequireAdmin())
	{
		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
		admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)
		admin.POST("/tags", catalogHandler.CreateTag)
		admin.DELETE("/tags/:id", catalogHandler.DeleteTag)
		admin.POST("/templates/create", templateHandler.Create)
		admin.POST("/templates/create-assets", templateHandler.CreateAssets)
		admin.PUT("/templates/:id", templateHandler.Update)
		admin.DELETE("/templates/:id", templateHandler.Delete)
		admin.POST("/storage/presigned-url", storageHandler.PresignUpload)
		admin.POST("/storage/upload", storageHandler.Upload)
		admin.GET("/storage/download-url", storageHandler.DownloadURL)
		admin.DELETE("/storage/object", storageHandler.DeleteObject)
		admin.GET("/admin/users", adminHandler.ListUsers)
		admin.PUT("/admin/users/:id/role", adminHandler.SetRole)
		admin.GET("/admin/contact-messages", contactHandler.ListMessages)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
