package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation modes for manufacturing electricity.
// "per_unit": ElectricityKWh is the consumption of a single unit.
// "allocated": ElectricityKWh is a site total divided across TotalOutput units.
const (
	AllocationPerUnit   = "per_unit"
	AllocationAllocated = "allocated"
)

// Product is one item under a contract. It carries the manufacturing and
// distribution data inline; material and transport entries hang off it.
type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"index;not null"`
	// Year selects the electricity grid factor used for stage C.
	Year int `gorm:"not null"`

	// OverrideTotal replaces the computed footprint entirely when OverrideEnabled
	// is set, e.g. when the supplier provides a verified PCF.
	OverrideEnabled bool            `gorm:"not null;default:false"`
	OverrideTotal   decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`

	// Manufacturing (stage C)
	ElectricityKWh decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	AllocationMode string          `gorm:"type:varchar(20);not null;default:'per_unit'"`
	TotalOutput    int64           `gorm:"not null;default:0"`

	// Distribution (stage D) — single downstream leg to the customer.
	DistributionWeightKg   decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	DistributionDistanceKm decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	DistributionVehicleID  *string         `gorm:"type:varchar(40)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Contract         *Contract        `gorm:"foreignKey:ContractID"`
	MaterialEntries  []MaterialEntry  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	TransportEntries []TransportEntry `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
