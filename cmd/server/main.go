// @title                       Milk Collection API
// @version                     1.0
// @description                 Milk intake records, accounts and authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dairyledger/milk-collection/internal/api"
	"github.com/dairyledger/milk-collection/internal/core/service"
	"github.com/dairyledger/milk-collection/internal/infrastructure/config"
	mongostore "github.com/dairyledger/milk-collection/internal/infrastructure/db/mongo"
	redisstore "github.com/dairyledger/milk-collection/internal/infrastructure/db/redis"
	"github.com/dairyledger/milk-collection/internal/infrastructure/http/handlers"
	"github.com/dairyledger/milk-collection/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "milk-collection",
	})

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "milk-collection",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close mongodb connection")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	userRepo := mongostore.NewUserRepository(db)
	milkRepo := mongostore.NewMilkRepository(db)
	auditRepo := mongostore.NewAuditRepository(db)
	if err := mongostore.EnsureIndexes(ctx, userRepo, milkRepo, auditRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongodb indexes")
	}

	idem := redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger.Named("svc.auth"))
	userSvc := service.NewUserService(userRepo, milkRepo, logger.Named("svc.users"))
	milkSvc := service.NewMilkService(milkRepo, userRepo, auditRepo, idem, logger.Named("svc.milk"))

	if cfg.Admin.Enabled() {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap administrator")
		}
		log.Info().Str("username", cfg.Admin.Username).Bool("created", created).Msg("administrator account ready")
	}

	engine := api.NewRouter(api.Deps{
		MilkService:  milkSvc,
		UserService:  userSvc,
		AuthService:  authSvc,
		JWTSecret:    cfg.JWTSecret,
		Logger:       logger.Named("http"),
		HealthChecks: []handlers.Check{handlers.MongoCheck(db), handlers.RedisCheck(rdb)},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
