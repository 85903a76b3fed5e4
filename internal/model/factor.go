package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialFactor is catalog reference data: kg CO2e emitted per kg of a raw
// material. The table is seeded with built-in defaults and replaced wholesale
// by a successful remote refresh; rows are never edited individually.
type MaterialFactor struct {
	// ID is the stable catalog code, e.g. "aluminium_ingot". Codes survive
	// refreshes so entries keep resolving.
	ID         string          `gorm:"type:varchar(40);primaryKey"`
	Name       string          `gorm:"not null"`
	Factor     decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	WeightUnit string          `gorm:"type:varchar(10);not null;default:'kg'"`
	FactorUnit string          `gorm:"type:varchar(20);not null;default:'kgCO2e/kg'"`
	// Source names where the factor came from: "builtin" or the refresh URL host.
	Source    string `gorm:"not null;default:'builtin'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MaterialFactor) TableName() string { return "material_factors" }

// TransportFactor is kg CO2e per tonne-kilometre for a vehicle class.
// Seeded constants; not touched by the remote refresh.
type TransportFactor struct {
	ID        string          `gorm:"type:varchar(40);primaryKey"`
	Name      string          `gorm:"not null"`
	Factor    decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TransportFactor) TableName() string { return "transport_factors" }

// ElectricityFactor is the grid emission factor (kg CO2e per kWh) for a year.
type ElectricityFactor struct {
	Year      int             `gorm:"primaryKey"`
	Factor    decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ElectricityFactor) TableName() string { return "electricity_factors" }
