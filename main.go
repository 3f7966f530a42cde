package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"zyncchat-api/cache"
	"zyncchat-api/config"
	"zyncchat-api/database"
	"zyncchat-api/jobs"
	"zyncchat-api/metrics"
	"zyncchat-api/middleware"
	"zyncchat-api/repositories"
	"zyncchat-api/routes"
	"zyncchat-api/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "optional YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Security.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database, cfg.Server.Debug)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, logger); err != nil {
		return err
	}
	if cfg.Database.Seed {
		if err := database.SeedData(db, logger); err != nil {
			logger.Warn("failed to seed database", zap.Error(err))
		}
	}

	store, err := cache.NewCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to connect to cache: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, friendRepo := buildServices(ctx, cfg, db, store, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.TraceID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		metrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.ErrorHandler(logger),
	)
	routes.SetupRoutes(router, cfg, svc, logger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var reconcile *jobs.FriendshipReconcileJob
	if cfg.Jobs.ReconcileEnabled {
		reconcile = jobs.NewFriendshipReconcileJob(friendRepo, cfg.Jobs.ReconcileSchedule, logger)
		if err := reconcile.Start(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting ZyncChat API server",
			zap.Int("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.String("database", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if reconcile != nil {
			reconcile.Stop()
		}
		if closer, ok := store.(interface{ Close() error }); ok {
			_ = closer.Close()
		} else if closer, ok := store.(interface{ Close() }); ok {
			closer.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildServices(
	ctx context.Context,
	cfg *config.Config,
	db *gorm.DB,
	store cache.Cache,
	logger *zap.Logger,
) (routes.Services, *repositories.FriendRepository) {
	userRepo := repositories.NewUserRepository(db)
	friendRepo := repositories.NewFriendRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)

	vendorHTTP := &http.Client{Timeout: cfg.AI.STTTimeout + 10*time.Second}

	sessions := services.NewSessionService(cfg.Security.JWTSecret, cfg.Security.TokenTTL, store, userRepo)
	chat := services.NewChatService(cfg.Chat, services.NewVendorClient("stream", vendorHTTP, cfg.AI.RequestTimeout), logger)
	mailer := services.NewEmailService(cfg.Email, logger)

	clientURL := ""
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		clientURL = origins[0]
	}

	var predictor services.TextPredictor
	if cfg.AI.ProjectID != "" {
		vertex, err := services.NewVertexPredictor(ctx, cfg.AI, nil)
		if err != nil {
			// the tutor answers as not configured until credentials are fixed
			logger.Warn("AI tutor disabled", zap.Error(err))
		} else {
			predictor = vertex
		}
	}

	svc := routes.Services{
		Sessions: sessions,
		Auth:     services.NewAuthService(userRepo, sessions, chat, mailer, cfg.Security.ResetTokenTTL, clientURL, logger),
		Profile:  services.NewProfileService(userRepo, chat),
		Friends:  services.NewFriendService(db, userRepo, friendRepo, chat, logger),
		Chat:     chat,
		AI:       services.NewAIService(cfg.AI, vendorHTTP, logger),
		SEO:      services.NewSEOService(services.NewVendorClient("seo-audit", vendorHTTP, cfg.AI.RequestTimeout), nil),
		Tutor:    services.NewTutorService(conversationRepo, predictor),
	}
	return svc, friendRepo
}
