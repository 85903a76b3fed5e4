package model

import (
	"time"

	"github.com/google/uuid"
)

// FactorRefreshLog records every attempt to replace the material factor table
// from the remote source. Entries are append-only — failed attempts stay on
// record so operators can see when the catalog last changed and why a refresh
// did not.
// Status: "success" | "failed"
type FactorRefreshLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceURL string    `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null"`
	// RowsLoaded is the number of factors installed on success, 0 on failure.
	RowsLoaded int `gorm:"not null;default:0"`
	// RowsSkipped counts malformed CSV lines dropped during parsing.
	RowsSkipped int `gorm:"not null;default:0"`
	Error       *string
	CreatedAt   time.Time
}

func (FactorRefreshLog) TableName() string { return "factor_refresh_logs" }
