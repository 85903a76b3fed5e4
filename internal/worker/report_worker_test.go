package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory repo stubs ─────────────────────────────────────────────────────

type memReportRepo struct {
	reports map[uuid.UUID]*model.Report
	updates int
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: make(map[uuid.UUID]*model.Report)}
}

func (r *memReportRepo) seed(contractID uuid.UUID) *model.Report {
	rpt := &model.Report{ID: uuid.New(), ContractID: contractID, Status: "pending"}
	r.reports[rpt.ID] = rpt
	return rpt
}

func (r *memReportRepo) Create(_ context.Context, rpt *model.Report) error {
	rpt.ID = uuid.New()
	r.reports[rpt.ID] = rpt
	return nil
}

func (r *memReportRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Report, error) {
	rpt, ok := r.reports[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return rpt, nil
}

func (r *memReportRepo) ListByContract(_ context.Context, contractID uuid.UUID) ([]model.Report, error) {
	var out []model.Report
	for _, rpt := range r.reports {
		if rpt.ContractID == contractID {
			out = append(out, *rpt)
		}
	}
	return out, nil
}

func (r *memReportRepo) Update(_ context.Context, rpt *model.Report) error {
	r.updates++
	r.reports[rpt.ID] = rpt
	return nil
}

func (r *memReportRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.Report, error) {
	var out []model.Report
	for _, rpt := range r.reports {
		if rpt.Status == "pending" && rpt.NextRetryAt != nil && !rpt.NextRetryAt.After(now) {
			out = append(out, *rpt)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

var _ repository.ReportRepository = (*memReportRepo)(nil)

type memContractRepo struct {
	contract *model.Contract
	findErr  error
}

func (r *memContractRepo) Create(_ context.Context, _ *model.Contract) error { return nil }

func (r *memContractRepo) FindByID(_ context.Context, _ uuid.UUID) (*model.Contract, error) {
	return r.contract, r.findErr
}

func (r *memContractRepo) FindByIDWithProducts(_ context.Context, _ uuid.UUID) (*model.Contract, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.contract, nil
}

func (r *memContractRepo) List(_ context.Context, _ dto.ContractFilter) ([]model.Contract, int64, error) {
	return nil, 0, nil
}

func (r *memContractRepo) ProductCounts(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
	return map[uuid.UUID]int64{}, nil
}

func (r *memContractRepo) Update(_ context.Context, _ *model.Contract) error { return nil }
func (r *memContractRepo) SoftDelete(_ context.Context, _ uuid.UUID) error   { return nil }
func (r *memContractRepo) Reactivate(_ context.Context, _ uuid.UUID) error   { return nil }

var _ repository.ContractRepository = (*memContractRepo)(nil)

type memFactorRepo struct{}

func (memFactorRepo) ListMaterialFactors(_ context.Context) ([]model.MaterialFactor, error) {
	return []model.MaterialFactor{
		{ID: "aluminium_ingot", Name: "Aluminium (primary ingot)", Factor: decimal.RequireFromString("6.7")},
	}, nil
}

func (memFactorRepo) ListTransportFactors(_ context.Context) ([]model.TransportFactor, error) {
	return []model.TransportFactor{
		{ID: "truck_10t", Name: "Truck, 10 t payload", Factor: decimal.RequireFromString("0.131")},
	}, nil
}

func (memFactorRepo) ListElectricityFactors(_ context.Context) ([]model.ElectricityFactor, error) {
	return []model.ElectricityFactor{{Year: 2024, Factor: decimal.RequireFromString("0.424")}}, nil
}

func (memFactorRepo) ReplaceMaterialFactors(_ context.Context, _ []model.MaterialFactor) error {
	return nil
}

func (memFactorRepo) CreateRefreshLog(_ context.Context, _ *model.FactorRefreshLog) error { return nil }

func (memFactorRepo) ListRefreshLogs(_ context.Context, _ int) ([]model.FactorRefreshLog, error) {
	return nil, nil
}

var _ repository.FactorRepository = memFactorRepo{}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func testContract() *model.Contract {
	id := "aluminium_ingot"
	contractID := uuid.New()
	return &model.Contract{
		ID: contractID, Name: "Acme FY2026", Active: true,
		Products: []model.Product{
			{
				ID: uuid.New(), ContractID: contractID, Name: "Bottle", Year: 2024,
				AllocationMode: model.AllocationPerUnit,
				MaterialEntries: []model.MaterialEntry{
					{Name: "Body", WeightKg: decimal.RequireFromString("10"), MaterialFactorID: &id},
				},
			},
		},
	}
}

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "localhost:19999"})
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ── Backoff helpers ──────────────────────────────────────────────────────────

func TestComputeRetryBackoff(t *testing.T) {
	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{5, 16 * time.Minute},
		{6, 30 * time.Minute},
		{12, 30 * time.Minute},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, computeRetryBackoff(c.retryCount), "retryCount=%d", c.retryCount)
	}
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, func(int) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_ReturnsLastError(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 2, func(i int) error {
		attempts++
		if i == 0 {
			return errors.New("first")
		}
		return errors.New("second")
	})

	require.EqualError(t, err, "second")
	assert.Equal(t, 2, attempts)
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := withRetry(ctx, 3, func(int) error {
		attempts++
		return errors.New("always")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts, "cancelled context stops before the second attempt")
}

// ── ProcessReport ────────────────────────────────────────────────────────────

func TestProcessReport_GeneratesPDF(t *testing.T) {
	dir := t.TempDir()
	contract := testContract()
	reports := newMemReportRepo()
	rpt := reports.seed(contract.ID)

	w := NewReportWorker(reports, &memContractRepo{contract: contract}, memFactorRepo{}, nil, nil, dir)
	w.ProcessReport(context.Background(), rpt)

	assert.Equal(t, "generated", rpt.Status)
	assert.Nil(t, rpt.NextRetryAt)
	assert.Nil(t, rpt.LastError)
	require.NotNil(t, rpt.PDFPath)
	assert.Equal(t, filepath.Join(dir, "report_"+rpt.ID.String()+".pdf"), *rpt.PDFPath)

	info, err := os.Stat(*rpt.PDFPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(100), "PDF should have real content")
}

func TestProcessReport_AlreadyGenerated_Skips(t *testing.T) {
	reports := newMemReportRepo()
	rpt := reports.seed(uuid.New())
	rpt.Status = "generated"

	w := NewReportWorker(reports, &memContractRepo{findErr: errors.New("must not be called")}, memFactorRepo{}, nil, nil, t.TempDir())
	w.ProcessReport(context.Background(), rpt)

	assert.Equal(t, 0, reports.updates, "finished reports are not reprocessed")
}

func TestProcessReport_FailureSchedulesBackoff(t *testing.T) {
	reports := newMemReportRepo()
	rpt := reports.seed(uuid.New())

	w := NewReportWorker(reports, &memContractRepo{findErr: errors.New("connection refused")}, memFactorRepo{}, nil, nil, t.TempDir())
	w.ProcessReport(context.Background(), rpt)

	assert.Equal(t, "pending", rpt.Status)
	assert.Equal(t, 1, rpt.RetryCount)
	require.NotNil(t, rpt.NextRetryAt)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *rpt.NextRetryAt, 10*time.Second)
	require.NotNil(t, rpt.LastError)
	assert.Contains(t, *rpt.LastError, "load contract")
}

func TestProcessReport_MaxRetriesMovesToFailed(t *testing.T) {
	reports := newMemReportRepo()
	rpt := reports.seed(uuid.New())
	rpt.RetryCount = MaxReportRetries - 1

	// Dead-port redis: the DLQ push fails and is logged, the state transition
	// still lands.
	w := NewReportWorker(reports, &memContractRepo{findErr: errors.New("connection refused")}, memFactorRepo{}, nil, deadRedis(), t.TempDir())
	w.ProcessReport(context.Background(), rpt)

	assert.Equal(t, "failed", rpt.Status)
	assert.Equal(t, MaxReportRetries, rpt.RetryCount)
	assert.Nil(t, rpt.NextRetryAt)
	require.NotNil(t, rpt.LastError)
}

// ── Queue entrypoint ─────────────────────────────────────────────────────────

func TestProcess_QueuePayloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	contract := testContract()
	reports := newMemReportRepo()
	rpt := reports.seed(contract.ID)

	w := NewReportWorker(reports, &memContractRepo{contract: contract}, memFactorRepo{}, nil, nil, dir)
	w.Process(context.Background(), mustJSON(t, ReportJobPayload{ReportID: rpt.ID.String()}))

	assert.Equal(t, "generated", rpt.Status)
	require.NotNil(t, rpt.PDFPath)
}

func TestProcess_BadInput(t *testing.T) {
	reports := newMemReportRepo()
	w := NewReportWorker(reports, &memContractRepo{}, memFactorRepo{}, nil, nil, t.TempDir())

	// None of these may panic or touch the repo.
	w.Process(context.Background(), json.RawMessage(`{not json`))
	w.Process(context.Background(), mustJSON(t, ReportJobPayload{ReportID: "not-a-uuid"}))
	w.Process(context.Background(), mustJSON(t, ReportJobPayload{ReportID: uuid.NewString()}))

	assert.Equal(t, 0, reports.updates)
}
