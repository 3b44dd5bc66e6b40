package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/marketarena/marketplace-api/internal/cache"
	"github.com/marketarena/marketplace-api/internal/config"
	"github.com/marketarena/marketplace-api/internal/database"
	"github.com/marketarena/marketplace-api/internal/handler"
	"github.com/marketarena/marketplace-api/internal/metrics"
	"github.com/marketarena/marketplace-api/internal/middleware"
	"github.com/marketarena/marketplace-api/internal/repository"
	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/worker"
)

// main is the application entrypoint for the marketplace battle API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("starting marketplace api")

	// 3. Select persistence backend
	var store repository.Store
	switch cfg.StoreDriver {
	case "postgres":
		db, err := database.Connect(&cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := runMigrations(db.DB); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		store = repository.NewPostgresStore(db)
	case "memory":
		store = repository.NewMemoryStore()
		log.Info().Msg("using in-memory store")
	}

	// 3a. Connect to Redis when configured. Without it the leaderboard cache
	// stays nil and every read recomputes from the ledger.
	var lbCache *cache.LeaderboardCache
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
		lbCache = cache.NewLeaderboardCache(redisClient)
	}

	// 4. Select ranking policy
	var ranker service.Ranker
	switch cfg.RankingPolicy {
	case "weighted":
		ranker = service.WeightedRanker{}
	default:
		ranker = service.SalesCountRanker{}
	}

	// 5. Initialize services
	authSvc := service.NewAuthService(store)
	battleSvc := service.NewBattleService(store, lbCache)
	productSvc := service.NewProductService(store, cfg.FloorRatio)
	purchaseSvc := service.NewPurchaseService(store, lbCache)
	rankingSvc := service.NewRankingService(store, ranker)
	leaderboardSvc := service.NewLeaderboardService(store, lbCache)

	// 6. Initialize handlers
	handlers := &Handlers{
		Health:      handler.NewHealthHandler(battleSvc),
		Admin:       handler.NewAdminHandler(authSvc, battleSvc, rankingSvc),
		Product:     handler.NewProductHandler(productSvc),
		Purchase:    handler.NewPurchaseHandler(purchaseSvc),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardSvc),
	}

	// 7. Initialize middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	adminMw := middleware.NewAdminMiddleware(cfg.AdminKey)

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	setupRoutes(router, handlers, authMw, adminMw)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewStatsWorker(store, cfg.Worker.StatsInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health      *handler.HealthHandler
	Admin       *handler.AdminHandler
	Product     *handler.ProductHandler
	Purchase    *handler.PurchaseHandler
	Leaderboard *handler.LeaderboardHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMw *middleware.AuthMiddleware, adminMw *middleware.AdminMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", metrics.Handler())

	// Public catalog reads: never phase-gated.
	router.GET("/v1/products/:id", handlers.Product.GetProduct)
	router.GET("/v1/search", handlers.Product.SearchProducts)
	router.GET("/v1/leaderboard", handlers.Leaderboard.GetLeaderboard)

	// Seller listing writes (token + phase gated in the service layer).
	router.POST("/v1/products/:id", authMw.Seller(), handlers.Product.CreateProduct)
	router.PATCH("/v1/products/:id", authMw.Seller(), handlers.Product.UpdateProduct)

	// Buyer purchases.
	router.POST("/v1/buy/:productId", authMw.Buyer(), handlers.Purchase.CreatePurchase)

	// Orchestrator routes (protected with the admin key)
	admin := router.Group("/v1/admin")
	admin.Use(adminMw.Handle())
	{
		admin.POST("/sellers", handlers.Admin.CreateSeller)
		admin.POST("/buyers", handlers.Admin.CreateBuyer)

		admin.GET("/phase", handlers.Admin.GetPhase)
		admin.POST("/phase", handlers.Admin.SetPhase)
		admin.GET("/day", handlers.Admin.GetDay)
		admin.POST("/day", handlers.Admin.SetDay)
		admin.GET("/round", handlers.Admin.GetRound)
		admin.POST("/round", handlers.Admin.SetRound)

		admin.POST("/rankings/recompute", handlers.Admin.RecomputeRankings)
		admin.POST("/rankings/initialize", handlers.Admin.InitializeRankings)
		admin.POST("/reset", handlers.Admin.Reset)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
