package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpa-intel/fpa-api/internal/api"
	"github.com/fpa-intel/fpa-api/internal/api/handler"
	"github.com/fpa-intel/fpa-api/internal/core/service"
	"github.com/fpa-intel/fpa-api/internal/pkg/config"
	"github.com/fpa-intel/fpa-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "fpa-api",
		Env:     cfg.Env,
	})
	log := logger.Get()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	cache, redisCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	content, err := openContent(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	services := api.Services{
		Auth:      service.NewAuthService(store.Users(), tokens, log),
		Users:     service.NewUserService(store, cfg.MaxPageSize, log),
		Analyses:  service.NewAnalysisService(store, cache, cfg.Redis.CacheTTL, cfg.MaxPageSize, log),
		Questions: service.NewQuestionService(store, cfg.MaxPageSize, log),
		Files: service.NewFileService(store, content, service.FileLimits{
			MaxSize:      cfg.Files.MaxSize,
			AllowedTypes: cfg.Files.AllowedTypes,
		}, log),
	}

	opts := api.Options{
		Env:            cfg.Env,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.Files.MaxSize + 1<<20,
		Swagger:        cfg.SwaggerEnabled,
		RateLimits: api.RateLimits{
			Register: cfg.RateLimit.Register,
			Login:    cfg.RateLimit.Login,
			Refresh:  cfg.RateLimit.Refresh,
			Burst:    cfg.RateLimit.Burst,
		},
		Dependencies: []handler.Dependency{
			{Name: "database", Mode: store.Mode(), Pinger: store},
			{Name: "storage", Mode: content.Mode(), Pinger: content},
		},
		Logger: log,
	}
	if redisCache != nil {
		opts.RateLimitCache = redisCache
		opts.Dependencies = append(opts.Dependencies, handler.Dependency{Name: "redis", Mode: "redis", Pinger: redisCache})
	} else {
		opts.Dependencies = append(opts.Dependencies, handler.Dependency{Name: "redis", Mode: "disabled"})
	}

	e := api.NewRouter(services, opts)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
