package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atharv3903/freightpath/internal/api"
	"github.com/atharv3903/freightpath/internal/cache"
	"github.com/atharv3903/freightpath/internal/config"
	"github.com/atharv3903/freightpath/internal/db"
	"github.com/atharv3903/freightpath/internal/logging"
	"github.com/atharv3903/freightpath/internal/metrics"
	"github.com/atharv3903/freightpath/internal/routing"
)

const serviceName = "freightpath"

func main() {
	cfg, err := config.FromFlagsServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: serviceName})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store api.Store
	if cfg.MySQLDSN != "" {
		conn, err := db.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			logger.Error("failed to connect to MySQL", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		if cfg.Migrate {
			if err := db.Migrate(conn); err != nil {
				logger.Error("migration failed", "error", err)
				os.Exit(1)
			}
			logger.Info("schema migrated")
		}
		store = db.Store{DB: conn}
	} else {
		logger.Warn("no DSN configured, stored-data endpoints disabled")
	}

	m := metrics.New()
	router := routing.NewRouter(cfg.Workers, logger, m)
	planner := routing.NewPlanner(router, cfg.Policy(), logger, m)

	gin.SetMode(gin.ReleaseMode)
	srv := api.New(store, planner, cache.NewResultCache(cfg.CacheCapacity), logger, m)
	srv.MaxBodyBytes = cfg.MaxBodyBytes

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()
	logger.Info("FREIGHTPATH listening", "addr", cfg.Addr, "workers", cfg.Workers, "duplicates", cfg.DuplicatePolicy)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
