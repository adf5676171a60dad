// Package http wires the HTTP surface: client verification endpoints, the
// admin management API, metrics, and health.
package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	licenseapp "github.com/keyward-io/keyward/internal/application/license"
	productapp "github.com/keyward-io/keyward/internal/application/product"
	"github.com/keyward-io/keyward/internal/application/verification/usecases"
	"github.com/keyward-io/keyward/internal/infrastructure/auth"
	"github.com/keyward-io/keyward/internal/infrastructure/config"
	"github.com/keyward-io/keyward/internal/infrastructure/events"
	"github.com/keyward-io/keyward/internal/infrastructure/geoip"
	"github.com/keyward-io/keyward/internal/infrastructure/ratelimit"
	"github.com/keyward-io/keyward/internal/infrastructure/repository"
	"github.com/keyward-io/keyward/internal/infrastructure/storage"
	"github.com/keyward-io/keyward/internal/interfaces/http/handlers"
	"github.com/keyward-io/keyward/internal/interfaces/http/middleware"
	"github.com/keyward-io/keyward/internal/interfaces/http/routes"
	"github.com/keyward-io/keyward/internal/shared/crypto"
	"github.com/keyward-io/keyward/internal/shared/db"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// Router owns the gin engine and the dependencies behind it that need a
// shutdown call.
type Router struct {
	engine    *gin.Engine
	publisher events.Publisher
	geo       geoip.Resolver
	logger    logger.Interface
}

// NewRouter builds the full dependency graph from config, database, and
// Redis, and registers every route.
func NewRouter(database *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Router, error) {
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(log))

	teamRepo := repository.NewTeamRepository(database, log)
	licenseRepo := repository.NewLicenseRepository(database, log)
	productRepo := repository.NewProductRepository(database, log)
	deviceRepo := repository.NewDeviceRepository(database, log)
	requestLogRepo := repository.NewRequestLogRepository(database, log)

	hasher := crypto.NewHasher(cfg.Crypto.LookupSecret)
	limiter := ratelimit.NewRedisRateLimiter(redisClient)
	sessionGuard := ratelimit.NewRedisSessionKeyGuard(redisClient)
	txManager := db.NewTransactionManager(database)

	var geo geoip.Resolver = geoip.NoopResolver{}
	if cfg.GeoIP.DatabasePath != "" {
		resolver, err := geoip.NewMaxMindResolver(cfg.GeoIP.DatabasePath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open geoip database: %w", err)
		}
		geo = resolver
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		publisher = events.NewKafkaPublisher(&cfg.Events, log)
	}

	objectStorage, err := storage.NewMinIOStorage(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	gates := usecases.NewGates(
		teamRepo, licenseRepo, productRepo, deviceRepo, requestLogRepo,
		limiter, hasher, geo, txManager, publisher, cfg.Verification, log,
	)
	verifyUC := usecases.NewVerifyLicenseUseCase(gates, log)
	heartbeatUC := usecases.NewHeartbeatUseCase(verifyUC)
	classloaderUC := usecases.NewClassloaderUseCase(
		gates, productRepo, objectStorage, sessionGuard,
		cfg.Storage.Bucket, cfg.Verification, log,
	)

	licenseService := licenseapp.NewService(licenseRepo, deviceRepo, teamRepo, hasher, log)
	productService := productapp.NewService(productRepo, licenseRepo, teamRepo, log)

	jwtService := auth.NewJWTService(cfg.AdminAuth.JWTSecret, cfg.AdminAuth.AccessExpMinutes)
	authMiddleware := middleware.NewAdminAuthMiddleware(jwtService, log)

	verificationHandler := handlers.NewVerificationHandler(verifyUC, heartbeatUC, classloaderUC, log)
	authHandler := handlers.NewAuthHandler(cfg.AdminAuth, jwtService, log)
	licenseHandler := handlers.NewLicenseHandler(licenseService, teamRepo, log)
	productHandler := handlers.NewProductHandler(productService, teamRepo, log)

	routes.SetupClientRoutes(engine, &routes.ClientRouteConfig{
		VerificationHandler: verificationHandler,
	})

	routes.SetupAdminRoutes(engine, &routes.AdminRouteConfig{
		AuthHandler:    authHandler,
		LicenseHandler: licenseHandler,
		ProductHandler: productHandler,
		AuthMiddleware: authMiddleware,
		CORS:           middleware.CORS(cfg.Server.AllowedOrigins),
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/health", healthCheck)

	return &Router{
		engine:    engine,
		publisher: publisher,
		geo:       geo,
		logger:    log,
	}, nil
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Close releases resources that outlive individual requests.
func (r *Router) Close() {
	if err := r.publisher.Close(); err != nil {
		r.logger.Warnw("failed to close event publisher", "error", err)
	}
	if err := r.geo.Close(); err != nil {
		r.logger.Warnw("failed to close geoip resolver", "error", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "keyward",
	})
}
