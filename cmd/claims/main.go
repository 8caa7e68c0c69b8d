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
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/claimguard/internal/claims"
	"github.com/richxcame/claimguard/internal/damage"
	"github.com/richxcame/claimguard/internal/decision"
	"github.com/richxcame/claimguard/internal/fraud"
	"github.com/richxcame/claimguard/internal/vision"
	"github.com/richxcame/claimguard/pkg/common"
	"github.com/richxcame/claimguard/pkg/config"
	"github.com/richxcame/claimguard/pkg/database"
	"github.com/richxcame/claimguard/pkg/health"
	"github.com/richxcame/claimguard/pkg/logger"
	"github.com/richxcame/claimguard/pkg/middleware"
	"github.com/richxcame/claimguard/pkg/redis"
	"github.com/richxcame/claimguard/pkg/secrets"
	"github.com/richxcame/claimguard/pkg/storage"
	"github.com/richxcame/claimguard/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName    = "claims"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if err := resolveSecrets(ctx, cfg); err != nil {
		logger.Fatal("Failed to resolve secrets", zap.Error(err))
	}

	shutdownTracing, err := tracing.Init(ctx, serviceName, serviceVersion, cfg.Server.Environment, cfg.Tracing)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Connect to Redis
	redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Claim image bucket
	images, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	// Vision model
	provider, err := vision.NewProvider(cfg.Vision)
	if err != nil {
		logger.Fatal("Failed to initialize vision provider", zap.Error(err))
	}
	visionClient := vision.NewClient(provider, cfg.Vision)

	// Pipeline
	repo := claims.NewRepository(db)
	assessor := damage.NewAssessor(visionClient, cfg.Vision.Timeout())
	aggregator := fraud.NewAggregator(
		fraud.NewMetadataAnalyzer(),
		fraud.NewFrequencyAnalyzer(repo, cfg.Pipeline.HistoryTimeout()),
		fraud.NewTimingAnalyzer(),
	)
	processor := claims.NewProcessor(repo, images, assessor, aggregator, decision.NewEngine())

	hostname, _ := os.Hostname()
	guard := claims.NewRedisGuard(redisClient, cfg.Pipeline.GuardTTL(), hostname)
	dispatcher := claims.NewDispatcher(processor, guard, cfg.Pipeline.Timeout())

	// Claim submission events
	var subscriber *claims.Subscriber
	if cfg.NATS.Enabled {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(serviceName))
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()

		subscriber = claims.NewSubscriber(nc, cfg.NATS.Subject, cfg.NATS.Queue, dispatcher)
		if err := subscriber.Start(); err != nil {
			logger.Fatal("Failed to subscribe to claim events", zap.Error(err))
		}
	}

	checks := map[string]func() error{
		"database": health.PostgresChecker(db),
		"redis":    health.RedisChecker(redisClient.Client),
		"storage":  health.PingerChecker(images, health.DefaultCheckerConfig()),
	}
	router := setupRouter(cfg, claims.NewHandler(dispatcher), checks)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Claims service starting",
			zap.String("port", cfg.Server.Port),
			zap.String("vision_provider", provider.Name()),
			zap.String("vision_model", cfg.Vision.Model),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down claims service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.Timeout()+10*time.Second)
	defer cancel()

	if subscriber != nil {
		if err := subscriber.Stop(); err != nil {
			logger.Warn("Failed to drain claim events", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("In-flight pipelines did not finish", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Claims service stopped")
}

// resolveSecrets overwrites credentials that are configured as secret
// references. Without a provider the environment values stand
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	if cfg.Secrets.Provider == "" {
		return nil
	}

	manager, err := secrets.NewManager(ctx, secrets.Config{
		Provider:   secrets.ProviderType(cfg.Secrets.Provider),
		CacheTTL:   cfg.Secrets.CacheTTL(),
		AWS:        secrets.AWSConfig{Region: cfg.Secrets.Region, Endpoint: cfg.Secrets.Endpoint},
		Kubernetes: secrets.KubernetesConfig{BasePath: cfg.Secrets.BasePath},
	})
	if err != nil {
		return err
	}

	return manager.Apply(ctx,
		secrets.Binding{Name: "db_password", Type: secrets.SecretDatabase, Ref: cfg.Secrets.DBPasswordRef, Dest: &cfg.Database.Password},
		secrets.Binding{Name: "redis_password", Type: secrets.SecretDatabase, Ref: cfg.Secrets.RedisPasswordRef, Dest: &cfg.Redis.Password},
		secrets.Binding{Name: "vision_api_key", Type: secrets.SecretVisionAPIKey, Ref: cfg.Secrets.VisionAPIKeyRef, Dest: &cfg.Vision.APIKey},
		secrets.Binding{Name: "storage_secret_key", Type: secrets.SecretStorage, Ref: cfg.Secrets.StorageSecretKeyRef, Dest: &cfg.Storage.SecretKey},
	)
}

func setupRouter(cfg *config.Config, handler *claims.Handler, checks map[string]func() error) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))

	// Health check and metrics
	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, serviceVersion, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return router
}
