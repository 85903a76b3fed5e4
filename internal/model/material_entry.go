package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialEntry is one raw-material line of a product (stage A).
// The emission factor comes from the catalog via MaterialFactorID unless
// UseCustomFactor is set, in which case CustomFactor applies.
type MaterialEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	WeightKg  decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`

	MaterialFactorID *string         `gorm:"type:varchar(40)"`
	CustomFactor     decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	UseCustomFactor  bool            `gorm:"not null;default:false"`

	// Position preserves the order rows were entered in.
	Position  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
