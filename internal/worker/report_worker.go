package worker

// report_worker.go
// Processes contract report jobs from QueueReports: renders the footprint PDF
// and optionally enqueues an email job with the file attached. Failed
// generations are rescheduled with exponential backoff; after MaxReportRetries
// the report is marked failed and the job lands in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carbonledger/internal/footprint"
	"carbonledger/internal/infra"
	"carbonledger/internal/metrics"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxReportRetries is the scheduled-retry budget per report. The in-process
// withRetry attempts inside one job run do not count against it.
const MaxReportRetries = 5

// ReportJobPayload is the job envelope sent to QueueReports.
type ReportJobPayload struct {
	ReportID string `json:"report_id"`
}

// ReportWorker renders contract footprint reports. It reads reference data
// through the repositories directly so a factor refresh landing between jobs
// is picked up by the next job.
type ReportWorker struct {
	reportRepo   repository.ReportRepository
	contractRepo repository.ContractRepository
	factorRepo   repository.FactorRepository
	dispatcher   *Dispatcher
	rdb          *redis.Client
	storagePath  string
}

func NewReportWorker(
	reportRepo repository.ReportRepository,
	contractRepo repository.ContractRepository,
	factorRepo repository.FactorRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	storagePath string,
) *ReportWorker {
	return &ReportWorker{
		reportRepo:   reportRepo,
		contractRepo: contractRepo,
		factorRepo:   factorRepo,
		dispatcher:   dispatcher,
		rdb:          rdb,
		storagePath:  storagePath,
	}
}

// Process handles a single report job from the queue.
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}

	reportID, err := uuid.Parse(payload.ReportID)
	if err != nil {
		log.Error().Str("report_id", payload.ReportID).Msg("report_worker: invalid report_id")
		return
	}

	rpt, err := w.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		log.Error().Err(err).Str("report_id", payload.ReportID).Msg("report_worker: report not found")
		return
	}

	w.ProcessReport(ctx, rpt)
}

// ProcessReport runs one generation attempt cycle for a report. Also called
// by the retry goroutine for rows whose next_retry_at has passed.
func (w *ReportWorker) ProcessReport(ctx context.Context, rpt *model.Report) {
	// Idempotent: requeued duplicates of an already finished report are no-ops.
	if rpt.Status == "generated" {
		log.Debug().Str("report_id", rpt.ID.String()).Msg("report_worker: already generated, skipping")
		return
	}

	var pdfPath string
	genErr := withRetry(ctx, 3, func(attempt int) error {
		path, err := w.generate(ctx, rpt)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("report_id", rpt.ID.String()).
				Msg("report_worker: generation attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})

	if genErr != nil {
		w.scheduleRetry(ctx, rpt, genErr)
		return
	}

	rpt.Status = "generated"
	rpt.PDFPath = &pdfPath
	rpt.NextRetryAt = nil
	rpt.LastError = nil
	if err := w.reportRepo.Update(ctx, rpt); err != nil {
		log.Error().Err(err).Str("report_id", rpt.ID.String()).Msg("report_worker: failed to persist generated state")
		return
	}
	metrics.ReportJobs.WithLabelValues("generated").Inc()
	log.Info().Str("report_id", rpt.ID.String()).Str("pdf", pdfPath).Msg("report_worker: report generated")

	if rpt.Recipient != nil && *rpt.Recipient != "" {
		emailJob := EmailJobPayload{
			ToEmail: *rpt.Recipient,
			Subject: "Carbon footprint report",
			Body:    "Attached is the requested product carbon footprint report.",
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *rpt.Recipient).Msg("report_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", *rpt.Recipient).Msg("report_worker: email job enqueued")
		}
	}
}

// generate renders the PDF for the report's contract and returns its path.
func (w *ReportWorker) generate(ctx context.Context, rpt *model.Report) (string, error) {
	contract, err := w.contractRepo.FindByIDWithProducts(ctx, rpt.ContractID)
	if err != nil {
		return "", fmt.Errorf("load contract: %w", err)
	}

	tables, err := w.loadTables(ctx)
	if err != nil {
		return "", fmt.Errorf("load factor tables: %w", err)
	}

	data := infra.ContractReportData{
		ReportID:     rpt.ID,
		ContractName: contract.Name,
		GeneratedAt:  time.Now().UTC(),
	}
	totals := footprint.Breakdown{}
	for i := range contract.Products {
		p := &contract.Products[i]
		b := footprint.Calculate(p, tables)
		data.Rows = append(data.Rows, infra.ReportRow{
			Name:       p.Name,
			Year:       p.Year,
			Overridden: p.OverrideEnabled,
			Breakdown:  b,
		})
		totals = totals.Add(b)
	}
	data.Totals = totals

	return infra.GenerateContractReportPDF(data, w.storagePath)
}

func (w *ReportWorker) loadTables(ctx context.Context) (footprint.Tables, error) {
	materials, err := w.factorRepo.ListMaterialFactors(ctx)
	if err != nil {
		return footprint.Tables{}, err
	}
	transports, err := w.factorRepo.ListTransportFactors(ctx)
	if err != nil {
		return footprint.Tables{}, err
	}
	electricity, err := w.factorRepo.ListElectricityFactors(ctx)
	if err != nil {
		return footprint.Tables{}, err
	}
	return footprint.NewTables(materials, transports, electricity), nil
}

// scheduleRetry bumps the retry counter and either schedules the next attempt
// or, past the budget, marks the report failed and sends the job to the DLQ.
func (w *ReportWorker) scheduleRetry(ctx context.Context, rpt *model.Report, cause error) {
	metrics.ReportJobs.WithLabelValues("failed").Inc()

	rpt.RetryCount++
	errMsg := cause.Error()
	rpt.LastError = &errMsg

	if rpt.RetryCount >= MaxReportRetries {
		rpt.Status = "failed"
		rpt.NextRetryAt = nil
		log.Error().
			Str("report_id", rpt.ID.String()).
			Int("retries", rpt.RetryCount).
			Msg("report_worker: max retries exceeded, moving to DLQ")

		payload := fmt.Sprintf(`{"report_id":"%s"}`, rpt.ID)
		SendToDLQ(ctx, w.rdb, QueueReports, "report", []byte(payload),
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxReportRetries, errMsg),
			rpt.RetryCount)
	} else {
		next := time.Now().Add(computeRetryBackoff(rpt.RetryCount))
		rpt.NextRetryAt = &next
		log.Warn().
			Str("report_id", rpt.ID.String()).
			Int("retry_count", rpt.RetryCount).
			Time("next_retry_at", next).
			Msg("report_worker: generation failed, scheduled next attempt")
	}

	if err := w.reportRepo.Update(ctx, rpt); err != nil {
		log.Error().Err(err).Str("report_id", rpt.ID.String()).Msg("report_worker: failed to persist retry state")
	}
}

// computeRetryBackoff returns the scheduled-retry delay: 1m, 2m, 4m … capped
// at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	d := time.Duration(1<<uint(retryCount-1)) * time.Minute
	if d > 30*time.Minute {
		d = 30 * time.Minute
	}
	return d
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
