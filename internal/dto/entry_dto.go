package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Material entries (stage A) ──────────────────────────────────────────────

type CreateMaterialEntryRequest struct {
	Name     string          `json:"name"      validate:"required,min=1,max=120"`
	WeightKg decimal.Decimal `json:"weight_kg" validate:"min=0"`
	// Either a catalog factor reference or a custom factor. When
	// UseCustomFactor is set, CustomFactor applies and the catalog id is kept
	// only for display.
	MaterialFactorID *string          `json:"material_factor_id" validate:"omitempty,max=40"`
	CustomFactor     *decimal.Decimal `json:"custom_factor"      validate:"omitempty,min=0"`
	UseCustomFactor  bool             `json:"use_custom_factor"`
}

type UpdateMaterialEntryRequest struct {
	Name             *string          `json:"name"      validate:"omitempty,min=1,max=120"`
	WeightKg         *decimal.Decimal `json:"weight_kg" validate:"omitempty,min=0"`
	MaterialFactorID *string          `json:"material_factor_id" validate:"omitempty,max=40"`
	CustomFactor     *decimal.Decimal `json:"custom_factor"      validate:"omitempty,min=0"`
	UseCustomFactor  *bool            `json:"use_custom_factor"`
}

type MaterialEntryResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	WeightKg         decimal.Decimal `json:"weight_kg"`
	MaterialFactorID *string         `json:"material_factor_id"`
	CustomFactor     decimal.Decimal `json:"custom_factor"`
	UseCustomFactor  bool            `json:"use_custom_factor"`
	Position         int             `json:"position"`
}

// ─── Transport entries (stage B) ─────────────────────────────────────────────

type CreateTransportEntryRequest struct {
	// MaterialEntryID links the leg to the material being moved; optional, but
	// when present it must name a material entry of the same product.
	MaterialEntryID   *string         `json:"material_entry_id" validate:"omitempty,uuid"`
	WeightKg          decimal.Decimal `json:"weight_kg"   validate:"min=0"`
	DistanceKm        decimal.Decimal `json:"distance_km" validate:"min=0"`
	TransportFactorID *string         `json:"transport_factor_id" validate:"omitempty,max=40"`
}

type UpdateTransportEntryRequest struct {
	MaterialEntryID   *string          `json:"material_entry_id" validate:"omitempty,uuid"`
	WeightKg          *decimal.Decimal `json:"weight_kg"   validate:"omitempty,min=0"`
	DistanceKm        *decimal.Decimal `json:"distance_km" validate:"omitempty,min=0"`
	TransportFactorID *string          `json:"transport_factor_id" validate:"omitempty,max=40"`
}

type TransportEntryResponse struct {
	ID                uuid.UUID       `json:"id"`
	MaterialEntryID   *uuid.UUID      `json:"material_entry_id"`
	WeightKg          decimal.Decimal `json:"weight_kg"`
	DistanceKm        decimal.Decimal `json:"distance_km"`
	TransportFactorID *string         `json:"transport_factor_id"`
	Position          int             `json:"position"`
}
