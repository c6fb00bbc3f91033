package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grabwallet/config"
	"grabwallet/internal/database"
	"grabwallet/internal/repository"
	"grabwallet/internal/router"
	"grabwallet/internal/scheduler"
	"grabwallet/internal/service"
	"grabwallet/pkg/lock"
)

func main() {
	cfg := config.Load()
	log := config.InitLogger()
	ctx := context.Background()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := database.SeedDefaults(ctx, db, cfg); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}
	if err := database.SeedAdmin(ctx, db, &cfg.Admin, log); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	rdb, err := database.NewRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "grabwallet:lock:", cfg.Ledger.LockTTL, cfg.Ledger.LockTimeout)
		log.Info("using redis ledger locks")
	} else {
		log.Info("REDIS_URL not set, using in-process ledger locks")
	}

	shares := service.NewShareCountService(
		repository.NewUserRepository(db),
		repository.NewShareCountRepository(db),
		cfg.Referral.ShareBalanceThreshold,
		log,
	)
	jobs, err := scheduler.New(shares, cfg.Referral.ShareRefreshInterval, cfg.Ledger.Location(), log)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	jobs.Start()

	engine := router.Setup(cfg, db, locker, log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	if err := jobs.Shutdown(); err != nil {
		log.Errorf("scheduler shutdown: %v", err)
	}
	log.Info("server stopped")
}
