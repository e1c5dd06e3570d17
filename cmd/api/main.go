package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fullpotential/dashboard/internal/config"
	"github.com/fullpotential/dashboard/internal/db"
	httpx "github.com/fullpotential/dashboard/internal/http"
	"github.com/fullpotential/dashboard/internal/http/handlers"
	"github.com/fullpotential/dashboard/internal/observability"
	"github.com/fullpotential/dashboard/internal/orchestrator"
	"github.com/fullpotential/dashboard/internal/redisclient"
	"github.com/fullpotential/dashboard/internal/registry"
	"github.com/fullpotential/dashboard/internal/repo/postgres"
	"github.com/fullpotential/dashboard/internal/reporter"
	"github.com/fullpotential/dashboard/internal/status"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	// tracing is best-effort; the site runs fine without a collector
	shutdownTracer, err := observability.InitTracer(ctx, cfg.DropletID, cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracer init failed", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		// rate limiting fails open without redis
		log.Warn("redis unreachable", "err", err)
	}

	promRegistry := prometheus.NewRegistry()
	prom := observability.NewProm(promRegistry)

	prober := status.NewProber(prom)
	registryClient := registry.NewClient(cfg.RegistryURL, cfg.CacheTTL, prober, prom, log)
	orchestratorClient := orchestrator.NewClient(cfg.OrchestratorURL, prober, log)

	// background loops: registration/heartbeat and the session sweep. Both
	// stop on ctx cancellation and are awaited before exit.
	var wg sync.WaitGroup

	hb := reporter.New(reporter.Config{
		DropletID:    cfg.DropletID,
		DropletName:  cfg.DropletName,
		Port:         cfg.Port,
		Capabilities: handlers.Capabilities,
		Interval:     cfg.HeartbeatInterval,
	}, registryClient, log)

	sweeper := reporter.NewSessionSweeper(cfg.SessionSweepEvery, postgres.NewSessionsRepo(pool), log)

	wg.Add(2)

	go func() {
		defer wg.Done()
		hb.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	router := httpx.NewRouter(log, httpx.Deps{
		Config:       cfg,
		Pool:         pool,
		Registry:     registryClient,
		Orchestrator: orchestratorClient,
		Redis:        redisClient,
		Prom:         prom,
		PromRegistry: promRegistry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	// wait for the heartbeat and sweeper loops so no send is left dangling
	wg.Wait()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}
