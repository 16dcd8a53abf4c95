package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/catalog-explorer/internal/config"
	"github.com/Sternrassler/catalog-explorer/pkg/cache"
	"github.com/Sternrassler/catalog-explorer/pkg/client"
	"github.com/Sternrassler/catalog-explorer/pkg/favorites"
	"github.com/Sternrassler/catalog-explorer/pkg/logging"
	"github.com/Sternrassler/catalog-explorer/pkg/resolver"
)

// sqliteFileName is the favorites database inside favorites.path.
const sqliteFileName = "favorites.db"

// Deps holds the wired components commands operate on.
type Deps struct {
	Config    *config.Config
	Client    *client.Client
	Resolver  *resolver.Resolver
	Favorites *favorites.Store
	Logger    zerolog.Logger
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cfg, err := config.Load(globalConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = cfg.Upstream.BaseURL
	clientCfg.Timeout = cfg.Upstream.Timeout
	clientCfg.UserAgent = cfg.Upstream.UserAgent
	clientCfg.MaxRetries = cfg.Upstream.MaxRetries
	clientCfg.RateLimit = cfg.Upstream.RateLimit
	clientCfg.Burst = cfg.Upstream.Burst

	catalogClient, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("creating catalog client: %w", err)
	}
	defer catalogClient.Close()

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	var store cache.Store = cache.NewMemory()
	if cfg.Cache.Backend == "redis" {
		store = cache.NewRedis(redisClient, logger)
	}

	storage, closeStorage, err := openFavoritesStorage(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStorage()

	favs, err := favorites.Open(ctx, storage, logger)
	if err != nil {
		return fmt.Errorf("opening favorites: %w", err)
	}

	res := resolver.New(catalogClient, store, resolver.Config{
		MaxConcurrency: cfg.Resolver.MaxConcurrency,
	}, logger)

	return fn(&Deps{
		Config:    cfg,
		Client:    catalogClient,
		Resolver:  res,
		Favorites: favs,
		Logger:    logger,
	})
}

func setupLogging(cfg *config.Config) (zerolog.Logger, error) {
	name := cfg.Log.Level
	if globalLogLevel != "" {
		name = globalLogLevel
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return zerolog.Nop(), err
	}

	logging.Setup(logging.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
	return logging.NewLogger("catalog-cli"), nil
}

func openFavoritesStorage(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (favorites.Storage, func(), error) {
	noop := func() {}

	switch cfg.Favorites.Backend {
	case "redis":
		return favorites.NewRedisStorage(redisClient, cfg.Favorites.Key), noop, nil
	case "sqlite":
		if err := os.MkdirAll(cfg.Favorites.Path, 0o755); err != nil {
			return nil, noop, fmt.Errorf("creating favorites directory: %w", err)
		}
		db, err := favorites.NewSQLiteStorage(ctx, filepath.Join(cfg.Favorites.Path, sqliteFileName), cfg.Favorites.Key)
		if err != nil {
			return nil, noop, fmt.Errorf("opening favorites database: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return favorites.NewFileStorage(cfg.Favorites.Path, cfg.Favorites.Key), noop, nil
	}
}
