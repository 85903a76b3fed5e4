package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaterialFactorResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Factor     decimal.Decimal `json:"factor"`
	WeightUnit string          `json:"weight_unit"`
	FactorUnit string          `json:"factor_unit"`
	Source     string          `json:"source"`
}

type TransportFactorResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Factor decimal.Decimal `json:"factor"`
}

type ElectricityFactorResponse struct {
	Year   int             `json:"year"`
	Factor decimal.Decimal `json:"factor"`
}

// RefreshResponse summarizes one remote factor refresh attempt.
type RefreshResponse struct {
	Status      string  `json:"status"` // success | failed
	RowsLoaded  int     `json:"rows_loaded"`
	RowsSkipped int     `json:"rows_skipped"`
	Error       *string `json:"error,omitempty"`
}

// RefreshLogResponse is one audit row of the refresh history.
type RefreshLogResponse struct {
	SourceURL   string    `json:"source_url"`
	Status      string    `json:"status"`
	RowsLoaded  int       `json:"rows_loaded"`
	RowsSkipped int       `json:"rows_skipped"`
	Error       *string   `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
