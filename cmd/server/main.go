package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carbonledger/internal/config"
	"carbonledger/internal/infra"
	"carbonledger/internal/repository"
	"carbonledger/internal/router"
	"carbonledger/internal/scheduler"
	"carbonledger/internal/service"
	"carbonledger/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty console, prod: JSON (zerolog default)
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// One breaker instance guards every path to the remote factor source:
	// the admin refresh endpoint, the nightly cron, and the health check all
	// observe the same state.
	factorCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	// Start goroutine worker pool for async tasks (report rendering, email).
	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	reportRepo := repository.NewReportRepository(db)
	contractRepo := repository.NewContractRepository(db)
	factorRepo := repository.NewFactorRepository(db)

	reportWorker := worker.NewReportWorker(reportRepo, contractRepo, factorRepo, dispatcher, rdb, cfg.ReportStoragePath)
	workerHandlers := worker.Handlers{
		Report: reportWorker,
		Email:  worker.NewEmailWorker(mailer, rdb),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, workerHandlers)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{ReportRepo: reportRepo, Worker: reportWorker})

	// Nightly factor refresh from the remote catalog
	factorSource := infra.NewCSVFactorSource(cfg.FactorSourceURL)
	factorSvc := service.NewFactorService(factorRepo, factorSource, factorCB, rdb)
	sched := scheduler.New(factorSvc, cfg.FactorSourceCron)
	sched.Start()
	defer sched.Stop()

	r := router.New(cfg, db, rdb, factorCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("CarbonLedger backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
