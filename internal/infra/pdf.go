package infra

// pdf.go — Contract footprint report generation using go-pdf/fpdf.
// A4 portrait report with:
//   - Report header (contract name, generation timestamp)
//   - Per-product table: lifecycle stage subtotals A–D and total (kg CO2e/unit)
//   - Contract totals row in bold
//   - Override markers for products carrying supplier-declared totals
//
// The output file is saved to storagePath/report_{reportID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"carbonledger/internal/footprint"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// ReportRow is one product line of the report table.
type ReportRow struct {
	Name       string
	Year       int
	Overridden bool
	Breakdown  footprint.Breakdown
}

// ContractReportData is everything the renderer needs; the caller computes
// the breakdowns so this stays a pure layout concern.
type ContractReportData struct {
	ReportID     uuid.UUID
	ContractName string
	GeneratedAt  time.Time
	Rows         []ReportRow
	Totals       footprint.Breakdown
}

// GenerateContractReportPDF writes the footprint report for a contract.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateContractReportPDF(data ContractReportData, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("report_%s.pdf", data.ReportID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Product Carbon Footprint Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, data.ContractName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Generated "+data.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Table header ─────────────────────────────────────────────────────────
	// Columns: product (wide), year, A, B, C, D, total
	nameW := contentW * 0.28
	yearW := contentW * 0.08
	stageW := contentW * 0.12
	totalW := contentW - nameW - yearW - 4*stageW

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(nameW, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(yearW, 6, "Year", "B", 0, "C", false, 0, "")
	pdf.CellFormat(stageW, 6, "Materials", "B", 0, "R", false, 0, "")
	pdf.CellFormat(stageW, 6, "Upstream", "B", 0, "R", false, 0, "")
	pdf.CellFormat(stageW, 6, "Manufact.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(stageW, 6, "Distrib.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(totalW, 6, "Total", "B", 1, "R", false, 0, "")

	// ── Product rows ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range data.Rows {
		name := row.Name
		if row.Overridden {
			name += " *"
		}
		if len(name) > 42 {
			name = name[:41] + "…"
		}
		b := row.Breakdown
		pdf.CellFormat(nameW, 5.5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(yearW, 5.5, fmt.Sprintf("%d", row.Year), "", 0, "C", false, 0, "")
		pdf.CellFormat(stageW, 5.5, b.Materials.StringFixed(4), "", 0, "R", false, 0, "")
		pdf.CellFormat(stageW, 5.5, b.UpstreamTransport.StringFixed(4), "", 0, "R", false, 0, "")
		pdf.CellFormat(stageW, 5.5, b.Manufacturing.StringFixed(4), "", 0, "R", false, 0, "")
		pdf.CellFormat(stageW, 5.5, b.Distribution.StringFixed(4), "", 0, "R", false, 0, "")
		pdf.CellFormat(totalW, 5.5, b.Total.StringFixed(4), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(1)

	// ── Totals ───────────────────────────────────────────────────────────────
	t := data.Totals
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(nameW+yearW, 7, "Contract total", "", 0, "L", false, 0, "")
	pdf.CellFormat(stageW, 7, t.Materials.StringFixed(4), "", 0, "R", false, 0, "")
	pdf.CellFormat(stageW, 7, t.UpstreamTransport.StringFixed(4), "", 0, "R", false, 0, "")
	pdf.CellFormat(stageW, 7, t.Manufacturing.StringFixed(4), "", 0, "R", false, 0, "")
	pdf.CellFormat(stageW, 7, t.Distribution.StringFixed(4), "", 0, "R", false, 0, "")
	pdf.CellFormat(totalW, 7, t.Total.StringFixed(4), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "All values in kg CO2e per unit. Stages: raw materials, upstream transport, manufacturing energy, downstream transport.", "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "* total declared by supplier, stage breakdown not available.", "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
