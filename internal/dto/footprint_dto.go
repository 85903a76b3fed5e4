package dto

import (
	"carbonledger/internal/footprint"

	"github.com/google/uuid"
)

// ProductFootprintResponse is the per-unit breakdown for one product.
// Subtotals are kg CO2e per unit, rounded to 4 decimal places.
type ProductFootprintResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Year        int       `json:"year"`
	// Overridden marks products whose total comes from a supplier-declared
	// value rather than the stage calculation.
	Overridden bool `json:"overridden"`
	footprint.Breakdown
}

// ContractFootprintResponse aggregates every product under a contract.
type ContractFootprintResponse struct {
	ContractID   uuid.UUID                  `json:"contract_id"`
	ContractName string                     `json:"contract_name"`
	Products     []ProductFootprintResponse `json:"products"`
	Totals       footprint.Breakdown        `json:"totals"`
}
