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

	"go-ats-backend/config"
	_ "go-ats-backend/docs" // Important for Swagger
	v1 "go-ats-backend/internal/delivery/http/v1"
	"go-ats-backend/internal/domain"
	"go-ats-backend/internal/repository/memory"
	"go-ats-backend/internal/repository/postgres"
	"go-ats-backend/internal/usecase"
	"go-ats-backend/pkg/database"
	"go-ats-backend/pkg/logger"
	"go-ats-backend/pkg/redis"
	"go-ats-backend/pkg/security/antivirus"
	"go-ats-backend/pkg/storage"
	"go-ats-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

// @title           ATS Candidate API
// @version         1.0
// @description     Candidate management backend for an applicant tracking system.
// @host            localhost:3010
// @BasePath        /api
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)
	logger.Log.Info("Starting ATS backend", "port", cfg.Port, "db_driver", cfg.DBDriver, "storage_driver", cfg.StorageDriver)

	ctx := context.Background()
	health := map[string]usecase.Pinger{}

	// 3. Setup Persistence
	var candidateRepo domain.CandidateRepository
	var dbPool *pgxpool.Pool
	switch cfg.DBDriver {
	case config.DBDriverMemory:
		memRepo := memory.NewCandidateRepository()
		candidateRepo = memRepo
		health["database"] = memRepo
		logger.Log.Warn("Using in-memory candidate store; data is lost on restart")
	case config.DBDriverPostgres:
		dbPool, err = database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, dbPool); err != nil {
				logger.Log.Error("Failed to migrate database", "error", err)
				os.Exit(1)
			}
		}
		candidateRepo = postgres.NewCandidateRepository(dbPool)
		health["database"] = dbPool
	default:
		logger.Log.Error("Unknown DB_DRIVER", "driver", cfg.DBDriver)
		os.Exit(1)
	}

	// 4. Setup CV Storage
	var store storage.Store
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Error("Failed to setup S3 storage", "error", err)
			os.Exit(1)
		}
		store = s3Store
	case config.StorageDriverLocal:
		localStore := storage.NewLocalStore(cfg.UploadDir)
		if err := localStore.EnsureDir(); err != nil {
			logger.Log.Error("Failed to prepare upload directory", "error", err)
			os.Exit(1)
		}
		store = localStore
	default:
		logger.Log.Error("Unknown STORAGE_DRIVER", "driver", cfg.StorageDriver)
		os.Exit(1)
	}

	// 5. Setup CV malware scanning (optional)
	var scanner antivirus.Scanner
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, time.Duration(cfg.ClamAVTimeoutSeconds)*time.Second)
		if err := clam.Ping(ctx); err != nil {
			logger.Log.Warn("ClamAV not reachable at startup; CV uploads will fail until it is", "error", err)
		}
		scanner = clam
		health["antivirus"] = clam
	} else {
		health["antivirus"] = nil
	}

	// 6. Setup Redis (optional, rate limiting only)
	var redisClient *goredis.Client
	if cfg.UpstashRedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.Config{
			URL:      cfg.UpstashRedisURL,
			Password: cfg.UpstashRedisPassword,
		})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting uses in-memory fallback", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			health["redis"] = usecase.PingerFunc(func(ctx context.Context) error {
				return redis.HealthCheck(ctx, redisClient)
			})
		}
	}
	if redisClient == nil {
		health["redis"] = nil
	}

	// 7. Setup UseCases
	validate := validation.New()
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, store, validate)
	exportUC := usecase.NewExportUsecase(candidateRepo)
	healthUC := usecase.NewHealthUsecase(health)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC: candidateUC,
		ExportUC:    exportUC,
		HealthUC:    healthUC,
		Store:       store,
		Scanner:     scanner,
		Redis:       redisClient,
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server listening", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
