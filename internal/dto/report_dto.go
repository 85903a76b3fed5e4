package dto

import (
	"time"

	"github.com/google/uuid"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateReportRequest struct {
	// Recipient, when given, makes the worker email the finished PDF.
	Recipient *string `json:"recipient" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReportResponse struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	Status     string    `json:"status"` // pending | generated | failed
	Recipient  *string   `json:"recipient,omitempty"`
	RetryCount int       `json:"retry_count"`
	LastError  *string   `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
