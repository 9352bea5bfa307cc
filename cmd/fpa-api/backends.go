package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
	"github.com/fpa-intel/fpa-api/internal/core/service"
	"github.com/fpa-intel/fpa-api/internal/infrastructure/db/memory"
	"github.com/fpa-intel/fpa-api/internal/infrastructure/db/mongo"
	"github.com/fpa-intel/fpa-api/internal/infrastructure/db/redis"
	"github.com/fpa-intel/fpa-api/internal/infrastructure/storage"
	"github.com/fpa-intel/fpa-api/internal/pkg/config"
)

// openStore selects the document store once per process.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, error) {
	var store ports.Store
	if cfg.Database.Disabled {
		log.Warn().Msg("database disabled, using in-memory store")
		store = memory.New()
	} else {
		ms, err := mongo.Open(ctx, mongo.Config{URI: cfg.Database.MongoURI, Database: cfg.Database.MongoDB})
		if err != nil {
			return nil, err
		}
		log.Info().Str("db", cfg.Database.MongoDB).Msg("connected to mongodb")
		store = ms
	}

	if cfg.Database.SeedFixtures {
		seeded, err := service.SeedFixtures(ctx, store, time.Now())
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		if seeded {
			log.Info().Str("email", service.FixtureEmail).Msg("fixtures seeded")
		}
	}
	return store, nil
}

// openCache connects Redis unless it is disabled. The returned *redis.Cache is
// nil when the NopCache is in use.
func openCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Cache, *redis.Cache, error) {
	if cfg.Redis.Disabled {
		log.Info().Msg("redis disabled, caching off")
		return ports.NopCache{}, nil, nil
	}
	c, err := redis.Open(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	return c, c, nil
}

type contentStorage interface {
	ports.ContentStorage
	Mode() string
}

func openContent(ctx context.Context, cfg *config.Config) (contentStorage, error) {
	if cfg.Files.Backend == storage.MinioMode {
		return storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  cfg.Files.MinioEndpoint,
			Region:    cfg.Files.MinioRegion,
			Bucket:    cfg.Files.MinioBucket,
			AccessKey: cfg.Files.MinioAccessKey,
			SecretKey: cfg.Files.MinioSecretKey,
			UseSSL:    cfg.Files.MinioUseSSL,
		})
	}
	return storage.NewLocal(cfg.Files.UploadDir)
}
