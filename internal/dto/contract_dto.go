package dto

import (
	"time"

	"github.com/google/uuid"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateContractRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=120"`
	Description *string `json:"description"`
}

type UpdateContractRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=120"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// ContractFilter — Active: "false" = inactive only, "all" = everything,
// anything else = active only (default).
type ContractFilter struct {
	Name   string `form:"name"`
	Active string `form:"active"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ContractResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Active       bool      `json:"active"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type ContractListResponse struct {
	Data       []ContractResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
