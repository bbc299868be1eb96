package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/secureid/identity-api/internal/api"
	"github.com/secureid/identity-api/internal/core/service"
	"github.com/secureid/identity-api/internal/core/token"
	"github.com/secureid/identity-api/internal/infrastructure/config"
	mongodb "github.com/secureid/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/secureid/identity-api/internal/infrastructure/db/redis"
	"github.com/secureid/identity-api/internal/infrastructure/notify"
	"github.com/secureid/identity-api/internal/infrastructure/queue"
	"github.com/secureid/identity-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("redis connect failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	userRepo := mongodb.NewUserRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logg.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		logg.Fatal().Err(err).Msg("audit indexes failed")
	}

	// --- Core services ---
	dispatcher := queue.NewAuditDispatcher(0, auditRepo, logg)
	dispatcher.Start(ctx)

	authority := token.NewAuthority(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	notifier := notify.NewLogNotifier(logg)
	auditService := service.NewAuditService(auditRepo, dispatcher)
	authService := service.NewAuthService(userRepo, authority, notifier, auditService, cfg.Auth.ResetTTL, logg)
	userService := service.NewUserService(userRepo, auditService, logg)
	adminService := service.NewAdminService(userRepo, notifier, auditService, logg)

	e := api.NewRouter(api.Deps{
		Config:       cfg,
		Mongo:        db,
		Redis:        rdb,
		Counters:     redisdb.NewCounterStore(rdb),
		Authority:    authority,
		AuthService:  authService,
		UserService:  userService,
		AdminService: adminService,
		AuditService: auditService,
		Log:          logg,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logg.Fatal().Err(err).Msg("server stopped")
		}
	}()
	logg.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("identity api started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("shutdown failed")
	}
}
