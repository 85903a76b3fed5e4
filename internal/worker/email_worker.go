package worker

// email_worker.go — delivers finished report PDFs by mail. Delivery is not
// retried: a failed send goes straight to the DLQ, and the report stays
// downloadable through the API either way.

import (
	"context"
	"encoding/json"

	"carbonledger/internal/infra"
	"carbonledger/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope pushed to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// EmailWorker consumes QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
	rdb    *redis.Client
}

func NewEmailWorker(mailer *infra.Mailer, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, rdb: rdb}
}

// Process sends one report email. Malformed payloads are dropped.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: payload without recipient, dropped")
		return
	}

	if err := w.mailer.SendReport(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		metrics.EmailJobs.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw, err.Error(), 1)
		return
	}

	metrics.EmailJobs.WithLabelValues("sent").Inc()
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: report delivered")
}
