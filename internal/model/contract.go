package model

import (
	"time"

	"github.com/google/uuid"
)

// Contract is the root aggregate: a customer engagement grouping the products
// whose footprints are estimated together.
type Contract struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Products []Product `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}
