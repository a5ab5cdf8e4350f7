package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalaryHistory is an append-only audit entry recording a salary change on a
// contract. Rows are never updated or deleted.
type SalaryHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index" json:"contract_id"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`

	OldSalary decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"old_salary"`
	NewSalary decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"new_salary"`
	Reason    string          `gorm:"type:text" json:"reason"`

	EffectiveDate time.Time `gorm:"type:date;not null;index" json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
}
