package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxType enum constants
const (
	TaxTypeIRPP = "IRPP" // progressive personal income tax
	TaxTypeCNSS = "CNSS" // social security (flat rate, informational)
)

// TaxBracket is one row of a progressive tax table for a (country, tax type)
// pair. MaxBracket is nil for the unbounded top bracket. Active brackets for a
// pair must be contiguous, non-overlapping and sorted ascending by MinBracket.
type TaxBracket struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Country       string           `gorm:"type:varchar(2);not null;index:idx_bracket_scope" json:"country"`
	TaxType       string           `gorm:"type:varchar(10);not null;index:idx_bracket_scope" json:"tax_type"`
	Rate          decimal.Decimal  `gorm:"type:decimal(10,4);not null" json:"rate"` // 0.26 = 26%
	MinBracket    decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"min_bracket"`
	MaxBracket    *decimal.Decimal `gorm:"type:decimal(18,4)" json:"max_bracket"` // nil = unbounded
	Description   string           `gorm:"type:text" json:"description"`
	EffectiveDate *time.Time       `gorm:"type:date" json:"effective_date"`
	IsActive      bool             `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
