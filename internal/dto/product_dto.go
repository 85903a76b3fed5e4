package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
	// Year selects the electricity grid factor applied to manufacturing energy.
	Year int `json:"year" validate:"required,min=1990,max=2100"`
}

type UpdateProductRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=120"`
	Year *int    `json:"year" validate:"omitempty,min=1990,max=2100"`

	// Supplier-declared total footprint; replaces the computed value entirely
	// while OverrideEnabled is true.
	OverrideEnabled *bool            `json:"override_enabled"`
	OverrideTotal   *decimal.Decimal `json:"override_total" validate:"omitempty,min=0"`

	Manufacturing *ManufacturingRequest `json:"manufacturing"`
	Distribution  *DistributionRequest  `json:"distribution"`
}

// ManufacturingRequest carries the stage-C inputs. In "per_unit" mode
// ElectricityKWh is a single unit's consumption; in "allocated" mode it is a
// site total spread across TotalOutput units.
type ManufacturingRequest struct {
	ElectricityKWh decimal.Decimal `json:"electricity_kwh" validate:"min=0"`
	AllocationMode string          `json:"allocation_mode" validate:"required,oneof=per_unit allocated"`
	TotalOutput    int64           `json:"total_output"    validate:"min=0"`
}

// DistributionRequest carries the stage-D downstream leg.
type DistributionRequest struct {
	WeightKg        decimal.Decimal `json:"weight_kg"   validate:"min=0"`
	DistanceKm      decimal.Decimal `json:"distance_km" validate:"min=0"`
	VehicleFactorID *string         `json:"vehicle_factor_id"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ManufacturingResponse struct {
	ElectricityKWh decimal.Decimal `json:"electricity_kwh"`
	AllocationMode string          `json:"allocation_mode"`
	TotalOutput    int64           `json:"total_output"`
}

type DistributionResponse struct {
	WeightKg        decimal.Decimal `json:"weight_kg"`
	DistanceKm      decimal.Decimal `json:"distance_km"`
	VehicleFactorID *string         `json:"vehicle_factor_id"`
}

type ProductResponse struct {
	ID              uuid.UUID             `json:"id"`
	ContractID      uuid.UUID             `json:"contract_id"`
	Name            string                `json:"name"`
	Year            int                   `json:"year"`
	OverrideEnabled bool                  `json:"override_enabled"`
	OverrideTotal   decimal.Decimal       `json:"override_total"`
	Manufacturing   ManufacturingResponse `json:"manufacturing"`
	Distribution    DistributionResponse  `json:"distribution"`
	CreatedAt       time.Time             `json:"created_at"`

	// Entry lists are populated on single-product reads, omitted in listings.
	MaterialEntries  []MaterialEntryResponse  `json:"material_entries,omitempty"`
	TransportEntries []TransportEntryResponse `json:"transport_entries,omitempty"`
}
