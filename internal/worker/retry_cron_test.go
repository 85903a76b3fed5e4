package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessRetries_OnlyDueReports(t *testing.T) {
	contract := testContract()
	reports := newMemReportRepo()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	due := reports.seed(contract.ID)
	due.NextRetryAt = &past
	notDue := reports.seed(contract.ID)
	notDue.NextRetryAt = &future
	noSchedule := reports.seed(contract.ID)

	w := NewReportWorker(reports, &memContractRepo{contract: contract}, memFactorRepo{}, nil, nil, t.TempDir())
	processRetries(context.Background(), RetryCronConfig{ReportRepo: reports, Worker: w})

	require.Equal(t, "generated", reports.reports[due.ID].Status)
	assert.Equal(t, "pending", reports.reports[notDue.ID].Status)
	assert.Equal(t, "pending", reports.reports[noSchedule.ID].Status)
}

func TestProcessRetries_EmptyBatchIsNoOp(t *testing.T) {
	reports := newMemReportRepo()
	w := NewReportWorker(reports, &memContractRepo{}, memFactorRepo{}, nil, nil, t.TempDir())

	processRetries(context.Background(), RetryCronConfig{ReportRepo: reports, Worker: w})

	assert.Equal(t, 0, reports.updates)
}
