package infra

import (
	"bytes"
	"testing"
	"time"

	"carbonledger/internal/footprint"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReportData() ContractReportData {
	bottle := footprint.Breakdown{
		Materials:         decimal.RequireFromString("67"),
		UpstreamTransport: decimal.RequireFromString("13.1"),
		Manufacturing:     decimal.RequireFromString("1.06"),
		Distribution:      decimal.RequireFromString("13.1"),
		Total:             decimal.RequireFromString("94.26"),
	}
	declared := footprint.Breakdown{Total: decimal.RequireFromString("42.5")}

	return ContractReportData{
		ReportID:     uuid.New(),
		ContractName: "Acme FY2026",
		GeneratedAt:  time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Rows: []ReportRow{
			{Name: "Bottle", Year: 2024, Overridden: false, Breakdown: bottle},
			{Name: "Cap", Year: 2024, Overridden: true, Breakdown: declared},
		},
		Totals: bottle.Add(declared),
	}
}

func TestBuildContractWorkbook(t *testing.T) {
	data := testReportData()

	raw, err := BuildContractWorkbook(data)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())

	cell := func(ref string) string {
		v, err := wb.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "product", cell("A1"))
	assert.Equal(t, "total_kgco2e", cell("H1"))

	assert.Equal(t, "Bottle", cell("A2"))
	assert.Equal(t, "2024", cell("B2"))
	assert.Equal(t, "FALSE", cell("C2"))
	assert.Equal(t, "67", cell("D2"))
	assert.Equal(t, "13.1", cell("E2"))
	assert.Equal(t, "1.06", cell("F2"))
	assert.Equal(t, "94.26", cell("H2"))

	assert.Equal(t, "Cap", cell("A3"))
	assert.Equal(t, "TRUE", cell("C3"))
	assert.Equal(t, "0", cell("D3"), "overridden products carry no stage subtotals")
	assert.Equal(t, "42.5", cell("H3"))

	assert.Equal(t, "Acme FY2026 (total)", cell("A4"))
	assert.Equal(t, "136.76", cell("H4"))
}

func TestBuildContractWorkbook_NoProducts(t *testing.T) {
	data := ContractReportData{
		ReportID:     uuid.New(),
		ContractName: "Empty",
		GeneratedAt:  time.Now().UTC(),
	}

	raw, err := BuildContractWorkbook(data)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	v, err := wb.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Empty (total)", v, "totals row follows the header directly")
}
