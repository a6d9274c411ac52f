package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"zela-wheel-backend/internal/config"
	"zela-wheel-backend/internal/handlers"
	"zela-wheel-backend/internal/logging"
	"zela-wheel-backend/internal/middleware"
	"zela-wheel-backend/internal/services"
	"zela-wheel-backend/internal/wheel"
)

type closingStore interface {
	services.Storage
	handlers.Pinger
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	store, pinger, closeStore, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("storage ready", zap.String("backend", cfg.Storage))

	wc := cfg.Wheel
	w, err := wheel.Build(wc.Layout, wc.Weights, wc.Rotation, wheel.DefaultRNG{})
	if err != nil {
		return err
	}
	validator, err := wheel.NewValidator(wc.Token.TokenFormat)
	if err != nil {
		return err
	}
	fair, err := services.NewFairSeed()
	if err != nil {
		return err
	}

	local := services.NewLocalIssuer(wheel.NewGenerator(validator, wc.Token.MaxAttempts), wheel.DefaultRNG{}, wc.Token.TTL, logger)

	var issuer services.TokenIssuer = local
	if cfg.TokenMode == config.TokenModeRemote {
		var signer *services.PrizeSigner
		if cfg.IssuerSecret != "" {
			signer = services.NewPrizeSigner(cfg.IssuerSecret)
		}
		issuer = services.NewRemoteIssuer(cfg.IssuerURL, cfg.IssuerTimeout, validator, signer, logger)
	}

	registry := services.NewRegistry(store, logger)
	prizes := services.NewPrizeService(issuer, registry, services.NewArtifactBuilder(wc.Artifact), logger)

	hub := handlers.NewWebSocketHub(logger)
	defer hub.Close()

	manager := services.NewSessionManager(services.ManagerDeps{
		Wheel:    w,
		Store:    store,
		Prizes:   prizes,
		Fair:     fair,
		Renderer: hub,
		Location: cfg.Location,
		Logger:   logger,
	}, wc)
	defer manager.Close()

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	authHandler := handlers.NewAuthHandler(jwtService, logger)
	wheelHandler := handlers.NewWheelHandler(manager, fair, logger)
	tokenHandler := handlers.NewTokenHandler(validator, registry, logger)
	wsHandler := handlers.NewWebSocketHandler(hub, manager, logger)
	healthHandler := handlers.NewHealthHandler(pinger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORSMiddleware())

	router.GET("/healthz", healthHandler.Health)
	router.POST("/auth/session", authHandler.CreateSession)
	router.POST("/tokens/validate", tokenHandler.Validate)

	if cfg.IssuerEnabled {
		signer := services.NewPrizeSigner(cfg.IssuerSecret)
		issuerHandler := handlers.NewIssuerHandler(local, signer, logger)
		router.POST("/issue", middleware.IssuerAuth(signer), issuerHandler.Issue)
		logger.Info("signing authority enabled")
	}

	if cfg.OperatorKey != "" {
		admin := router.Group("/admin")
		admin.Use(middleware.OperatorAuth(cfg.OperatorKey))
		admin.POST("/fairness/rotate", wheelHandler.RotateSeed)
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/wheel", wheelHandler.GetWheel)
		protected.GET("/allowance", wheelHandler.GetAllowance)
		protected.POST("/spin", wheelHandler.Spin)
		protected.GET("/spin/state", wheelHandler.GetState)

		protected.POST("/prize/retry", wheelHandler.RetryPrize)
		protected.GET("/prize/download", wheelHandler.DownloadPrize)
		protected.GET("/tokens", wheelHandler.ListTokens)

		protected.GET("/fairness", wheelHandler.GetFairness)
		protected.POST("/fairness/verify", wheelHandler.VerifySpin)

		protected.GET("/ws", wsHandler.HandleWebSocket)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				manager.CleanupIdle(cfg.SessionIdleTTL)
			case <-ctx.Done():
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("token_mode", cfg.TokenMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStorage returns the store, its health pinger (nil for memory) and a close func.
func openStorage(cfg *config.Config) (services.Storage, handlers.Pinger, func(), error) {
	var store closingStore
	var err error

	switch cfg.Storage {
	case config.StorageMemory:
		return services.NewMemoryStore(), nil, func() {}, nil
	case config.StoragePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err = services.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		store, err = services.NewRedisStore(cfg)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return store, store, func() { store.Close() }, nil
}
