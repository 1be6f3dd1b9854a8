package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"storefront/catalog/internal/cache"
	"storefront/catalog/internal/config"
	"storefront/catalog/internal/repository"
	"storefront/catalog/internal/server"
	"storefront/catalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ServerContainer holds the components of the reference catalog service
type ServerContainer struct {
	Config     *config.Config
	Repository repository.ItemRepository
	Cache      cache.CategoryCache
	Service    *service.CatalogService
	Server     *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// NewServer connects to PostgreSQL and Redis. Redis being down is not fatal:
// the category cache is bypassed until it comes back.
func NewServer(ctx context.Context, cfg *config.Config) (*ServerContainer, error) {
	container := &ServerContainer{
		Config: cfg,
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		log.Warnf("⚠️ Database not reachable yet: %v", err)
	} else {
		log.Info("✅ Connected to PostgreSQL successfully")
	}
	container.db = db

	itemRepo := repository.NewItemRepository(db)
	container.Repository = itemRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Warnf("⚠️ Redis not reachable, category cache bypassed: %v", err)
	} else {
		log.Info("✅ Connected to Redis successfully")
	}
	container.redis = rdb

	categoryCache := cache.NewRedisCategoryCache(rdb, cfg.Redis.CategoryTTLDuration())
	container.Cache = categoryCache

	catalogService := service.NewCatalogService(itemRepo, categoryCache)
	container.Service = catalogService

	if !log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.NewCatalogHandler(catalogService))
	container.Server = server.New(cfg.Server, router)

	return container, nil
}

// Run serves the catalog API and warms the category cache alongside it.
// A failed warm-up is logged and never stops the server.
func (c *ServerContainer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	g.Go(func() error {
		categories, err := c.Service.ListCategories(ctx)
		if err != nil {
			log.Warnf("⚠️ Category cache warm-up failed: %v", err)
			return nil
		}
		log.Infof("🔥 Category cache warmed with %d categories", len(categories))
		return nil
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *ServerContainer) Close() error {
	log.Info("Shutting down container...")

	c.db.Close()
	if err := c.redis.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	log.Info("Container shut down successfully")
	return nil
}
