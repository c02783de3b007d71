package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/plaxtilineas/catalog_api/internal/config"
	"github.com/plaxtilineas/catalog_api/internal/database"
	"github.com/plaxtilineas/catalog_api/internal/handler"
	"github.com/plaxtilineas/catalog_api/internal/middleware"
	"github.com/plaxtilineas/catalog_api/internal/repository"
	"github.com/plaxtilineas/catalog_api/internal/service"
)

// main is the application entrypoint for the catalog API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting catalog api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, cfg.DB.MigrationsURL); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Initialize media store
	mediaStore, err := service.NewMediaStore(ctx, cfg.Media)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Media.Driver).Msg("media store initialization failed")
		fmt.Fprintf(os.Stderr, "media store initialization failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("driver", mediaStore.Name()).Msg("media store ready")

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 6. Initialize services
	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := service.NewAuthService(userRepo, tokens)
	productSvc := service.NewProductService(db, productRepo)
	uploadSvc := service.NewImageUploadService(mediaStore, cfg.Upload)
	healthSvc := service.NewHealthService(db, mediaStore, cfg.Media.PingTimeout)

	// 6a. Bootstrap admin account
	if cfg.Admin.Enabled() {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.Admin); err != nil {
			log.Error().Err(err).Msg("admin bootstrap failed")
		}
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(healthSvc),
		Product: handler.NewProductHandler(productSvc, uploadSvc),
		Auth:    handler.NewAuthHandler(authSvc, tokens),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(tokens)

	// 9. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Upload.MaxFiles) * cfg.Upload.MaxBytes
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	// 12. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Product *handler.ProductHandler
	Auth    *handler.AuthHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	// Diagnostics
	router.GET("/health", handlers.Health.GetHealth)
	diag := router.Group("/api/test")
	{
		diag.GET("/cloudinary", handlers.Health.TestMedia)
		diag.GET("/database", handlers.Health.TestDatabase)
		diag.GET("/all", handlers.Health.TestAll)
	}

	// Auth
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.POST("/refresh-token", handlers.Auth.Refresh)
		auth.GET("/profile", jwtMiddleware.Handle(), handlers.Auth.Profile)
	}

	// Products: reads are public, writes need a token
	products := router.Group("/api/productos")
	{
		products.GET("", handlers.Product.GetProducts)
		products.GET("/categoria/:category", handlers.Product.GetProductsByCategory)
		products.GET("/:id", handlers.Product.GetProductByID)
	}
	protected := products.Group("")
	protected.Use(jwtMiddleware.Handle())
	{
		protected.POST("", handlers.Product.CreateProduct)
		protected.PUT("/:id", handlers.Product.UpdateProduct)
		protected.PUT("/:id/con-imagenes", handlers.Product.UpdateProductWithImages)
		protected.DELETE("/:id", handlers.Product.DeleteProduct)
		protected.DELETE("/:id/permanent", handlers.Product.DeleteProductPermanent)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
