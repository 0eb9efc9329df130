// Package container provides dependency injection using Uber FX.
package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/application/account"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/application/catalog"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/application/kitchen"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/ai/gemini"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/config"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/http/server"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/monitoring"
	gormRepo "github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/persistence/gorm"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/persistence/memory"
	redisCache "github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/persistence/redis"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/persistence/sqlite"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/inbound"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
	"github.com/Shunsena-Jian/kasalo-kusina/pkg/logger"
)

// Module provides all dependency injection modules.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	MetricsModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the SQLite database behind GORM.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLogLevel(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}

		if cfg.Database.Seed {
			if err := sqlite.SeedDatabase(db); err != nil {
				log.Warn("Failed to seed database", zap.Error(err))
			}
		}

		log.Info("Connected to SQLite database",
			zap.String("path", cfg.Database.Path),
			zap.Bool("seeded", cfg.Database.Seed),
		)

		return db, nil
	},
)

func gormLogLevel(cfg *config.Config) gormLogger.LogLevel {
	switch cfg.Database.LogLevel {
	case "info":
		return gormLogger.Info
	case "warn":
		return gormLogger.Warn
	case "error":
		return gormLogger.Error
	default:
		if cfg.App.Debug {
			return gormLogger.Info
		}
		return gormLogger.Silent
	}
}

// CacheModule provides the listing cache. Redis when configured,
// in-memory otherwise.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if cfg.Redis.Enabled {
			cache, err := redisCache.NewCacheRepository(cfg.Redis, log)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to Redis: %w", err)
			}
			return cache, nil
		}
		log.Info("Using in-memory cache")
		return memory.NewCacheRepository(), nil
	},
)

// MetricsModule provides the Prometheus registry and app metrics.
var MetricsModule = fx.Provide(
	prometheus.NewRegistry,
	func(reg *prometheus.Registry) *monitoring.KitchenMetrics {
		return monitoring.NewKitchenMetrics(reg)
	},
)

// RepositoryModule provides repository implementations.
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormRepo.NewRecipeRepository,
		fx.As(new(outbound.RecipeRepository)),
	),
	fx.Annotate(
		gormRepo.NewTaxonomyRepository,
		fx.As(new(outbound.TaxonomyRepository)),
	),
	fx.Annotate(
		gormRepo.NewUserRepository,
		fx.As(new(outbound.UserRepository)),
	),
)

// ServiceModule provides application services.
var ServiceModule = fx.Provide(
	// Dish analyzer backed by the Gemini API
	fx.Annotate(
		func(cfg *config.Config, log *zap.Logger) *gemini.Client {
			return gemini.NewClient(cfg.Gemini, log)
		},
		fx.As(new(outbound.DishAnalyzer)),
	),

	// Account service
	func(users outbound.UserRepository, cfg *config.Config, log *zap.Logger) *account.Service {
		jwtSecret := cfg.Auth.JWTSecret
		if jwtSecret == "" {
			jwtSecret = "dev-secret-key" // config validation rejects this outside development
		}
		return account.NewService(users, jwtSecret, cfg.Auth.JWTExpiration, log)
	},

	// Kitchen session store with per-session rate limiters
	func(cfg *config.Config, log *zap.Logger) *kitchen.SessionStore {
		newLimiter := func() *kitchen.RateLimiter {
			return kitchen.NewRateLimiter(cfg.RateLimit.WindowMax, cfg.RateLimit.WindowSize, nil)
		}
		return kitchen.NewSessionStore(cfg.Kitchen.SessionTTL, newLimiter, log)
	},

	// Kitchen service
	fx.Annotate(
		kitchen.NewService,
		fx.As(new(inbound.KitchenService)),
	),

	// Catalog service
	fx.Annotate(
		catalog.NewService,
		fx.As(new(inbound.CatalogService)),
	),
)

// HTTPModule provides the HTTP server.
var HTTPModule = fx.Provide(
	server.NewServer,
)

// LifecycleModule registers lifecycle hooks.
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks wires server startup and graceful shutdown.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Kasalo Kusina",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Kasalo Kusina")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
