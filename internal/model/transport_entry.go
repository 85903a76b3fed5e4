package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransportEntry is one upstream freight leg of a product (stage B).
// MaterialEntryID is a weak link to the material being moved: it may be nil,
// but when the referenced MaterialEntry is deleted the database cascades the
// delete to this row — a transport leg must not outlive its material.
type TransportEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`

	MaterialEntryID *uuid.UUID `gorm:"type:uuid;index"`

	WeightKg   decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	DistanceKm decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`

	TransportFactorID *string `gorm:"type:varchar(40)"`

	Position  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	MaterialEntry *MaterialEntry `gorm:"foreignKey:MaterialEntryID;constraint:OnDelete:CASCADE"`
}
