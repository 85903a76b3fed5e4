package worker

// retry_cron.go
// Periodic sweep over reports stuck in status='pending' whose next_retry_at
// has passed. The sweep regenerates them through the same path the queue
// worker uses, which also rescues jobs whose original enqueue never made it
// into Redis.

import (
	"context"
	"time"

	"carbonledger/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ReportRepo repository.ReportRepository
	Worker     *ReportWorker
}

// StartRetryCron launches the sweep loop in the background. The loop exits
// when ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go runRetryLoop(ctx, cfg)
}

func runRetryLoop(ctx context.Context, cfg RetryCronConfig) {
	ticker := time.NewTicker(retryTickInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", retryTickInterval).Msg("report retry sweep started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("report retry sweep stopped")
			return
		case <-ticker.C:
			processRetries(ctx, cfg)
		}
	}
}

// processRetries drains one batch of due reports. Generation goes through
// ProcessReport so attempt counts, backoff, and DLQ hand-off stay in one
// place.
func processRetries(ctx context.Context, cfg RetryCronConfig) {
	due, err := cfg.ReportRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry sweep: listing due reports failed")
		return
	}
	if len(due) == 0 {
		return
	}

	log.Info().Int("count", len(due)).Msg("retry sweep: regenerating due reports")

	for i := range due {
		if ctx.Err() != nil {
			return
		}
		cfg.Worker.ProcessReport(ctx, &due[i])
	}
}
