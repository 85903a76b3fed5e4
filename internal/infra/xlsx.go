package infra

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildContractWorkbook renders a contract footprint as an xlsx workbook and
// returns the raw file bytes. One row per product, stage subtotals in
// kg CO2e/unit, contract totals in the last row.
func BuildContractWorkbook(data ContractReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"product",
		"year",
		"overridden",
		"materials_kgco2e",
		"upstream_transport_kgco2e",
		"manufacturing_kgco2e",
		"distribution_kgco2e",
		"total_kgco2e",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: write header: %w", err)
	}

	row := 2
	for _, r := range data.Rows {
		b := r.Breakdown
		excelRow := []interface{}{
			r.Name,
			r.Year,
			r.Overridden,
			b.Materials.InexactFloat64(),
			b.UpstreamTransport.InexactFloat64(),
			b.Manufacturing.InexactFloat64(),
			b.Distribution.InexactFloat64(),
			b.Total.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("xlsx: write row: %w", err)
		}
		row++
	}

	t := data.Totals
	totalsRow := []interface{}{
		data.ContractName + " (total)",
		"",
		"",
		t.Materials.InexactFloat64(),
		t.UpstreamTransport.InexactFloat64(),
		t.Manufacturing.InexactFloat64(),
		t.Distribution.InexactFloat64(),
		t.Total.InexactFloat64(),
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &totalsRow); err != nil {
		return nil, fmt.Errorf("xlsx: write totals: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: write buffer: %w", err)
	}
	return buf.Bytes(), nil
}
