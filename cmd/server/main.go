package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voltio/panelquote/internal/ai"
	"github.com/voltio/panelquote/internal/cache"
	"github.com/voltio/panelquote/internal/config"
	"github.com/voltio/panelquote/internal/db"
	"github.com/voltio/panelquote/internal/events"
	"github.com/voltio/panelquote/internal/platform/logger"
	"github.com/voltio/panelquote/internal/repository"
	"github.com/voltio/panelquote/internal/server"
	"github.com/voltio/panelquote/internal/services"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logg.Sync()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN, logg)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	if *migrateOnlyFlag {
		logg.Info("migrations completed; exiting as requested")
		return
	}

	// Cache backend: redis when configured, in-process otherwise.
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedisStore(cfg.RedisAddr, logg)
		defer redisStore.Close()
		store = redisStore
	} else {
		manager := cache.NewManager(0)
		defer manager.Stop()
		store = manager
	}

	repos := repository.New(dbConn, store, cfg.CacheTTL, logg)

	bus := events.NewBus(logg)
	aiSvc := ai.NewService(repos, logg)
	observer := events.NewQuotationObserver(aiSvc, logg)
	observer.Register(bus)
	defer observer.Stop()

	deps := server.Deps{
		DB:         dbConn,
		Repos:      repos,
		Quotations: services.NewQuotationService(repos, bus),
		Components: services.NewComponentService(repos),
		AI:         aiSvc,
		Log:        logg,
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(deps)}

	go func() {
		logg.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logg.Error("shutdown error", "error", err)
	}
	logg.Info("server gracefully stopped")
}
