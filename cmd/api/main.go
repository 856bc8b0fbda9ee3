package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/corvusHold/courier/internal/config"
	emailsvc "github.com/corvusHold/courier/internal/email/service"
	"github.com/corvusHold/courier/internal/logger"
	"github.com/corvusHold/courier/internal/platform/ratelimit"
	"github.com/corvusHold/courier/internal/platform/storage"
	trepo "github.com/corvusHold/courier/internal/templates/repository"
)

func main() {
	_ = godotenv.Load()

	if handleCLICommand(os.Args[1:]) {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	log.Info().Str("addr", cfg.AppAddr).Str("config", cfg.String()).Msg("starting api server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := backends{
		templates: trepo.NewDir(cfg.TemplatesDir),
		sender:    emailsvc.NewSender(cfg, log),
		probes:    map[string]func(context.Context) error{},
	}
	b.probes["templates"] = func(ctx context.Context) error {
		_, err := b.templates.List(ctx)
		return err
	}

	switch cfg.StorageBackend {
	case "postgres":
		pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid DATABASE_URL")
		}
		pgPool, err := pgxpool.NewWithConfig(ctx, pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to create pg pool")
		}
		defer pgPool.Close()
		b.contacts = storage.NewPostgres(pgPool, "contacts")
		b.deliveries = storage.NewPostgres(pgPool, "email_log")
		b.probes["db"] = pgPool.Ping
	default:
		b.contacts = storage.NewFile(cfg.ContactsFile)
		b.deliveries = storage.NewFile(cfg.EmailLogFile)
	}

	var limiterStore ratelimit.Store
	switch cfg.RateLimitStore {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		defer redisClient.Close()
		limiterStore = ratelimit.NewRedisStore(redisClient)
		b.probes["cache"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	default:
		limiterStore = ratelimit.NewMemoryStore()
	}
	b.limiter = ratelimit.New(limiterStore, cfg.EmailRateLimit, cfg.RateWindow, ratelimit.WithLogger(log))
	go b.limiter.Run(ctx, cfg.RateWindow)

	e := newServer(cfg, log, b)

	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
