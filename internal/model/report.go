package model

import (
	"time"

	"github.com/google/uuid"
)

// Report tracks the lifecycle of an asynchronously generated contract report.
// Status: "pending" | "generated" | "failed"
type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID uuid.UUID `gorm:"type:uuid;index;not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`
	// PDFPath is relative to the REPORT_STORAGE_PATH env var.
	PDFPath *string `gorm:"column:pdf_path"`
	// Recipient, when set, makes the worker mail the finished PDF.
	Recipient *string
	// Retry fields — the worker re-attempts generation with backoff.
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
