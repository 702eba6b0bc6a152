package v1

import (
	"net/http"
	"time"

	"go-ats-backend/config"
	"go-ats-backend/internal/delivery/http/middleware"
	"go-ats-backend/internal/delivery/http/response"
	"go-ats-backend/internal/domain"
	"go-ats-backend/internal/usecase"
	"go-ats-backend/pkg/security/antivirus"
	"go-ats-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Banner is the plain-text body of GET /.
const Banner = "ATS API - Backend para Sistema de Seguimiento de Talento"

type RouterDeps struct {
	CandidateUC domain.CandidateUsecase
	ExportUC    usecase.ExportUsecase
	HealthUC    usecase.HealthUsecase
	Store       storage.Store
	Scanner     antivirus.Scanner // optional; CVs are not scanned when nil
	Redis       *goredis.Client // optional; rate limits fall back to memory
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	// Keep multipart parts on disk beyond the CV limit
	r.MaxMultipartMemory = cfg.MaxCVBytes

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler())

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window, deps.Redis)))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	})

	if cfg.StorageDriver == config.StorageDriverLocal {
		r.Static("/uploads", cfg.UploadDir)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/health", healthHandler(deps.HealthUC))

	writeLimit := middleware.RateLimitMiddleware(middleware.WriteRateLimitConfig(cfg.RateLimitWriteThreshold, window, deps.Redis))
	var upload gin.HandlerFunc
	if deps.Store != nil {
		upload = middleware.CVUploadMiddleware(deps.Store, deps.Scanner, cfg.MaxCVBytes)
	}

	NewCandidateHandler(api, deps.CandidateUC, upload, writeLimit)
	if deps.ExportUC != nil {
		NewExportHandler(api, deps.ExportUC)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
