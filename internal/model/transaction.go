package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType enum constants
const (
	TransactionTypeSalary        = "SALARY_PAYMENT"
	TransactionTypeBonus         = "BONUS_PAYMENT"
	TransactionTypeReimbursement = "REIMBURSEMENT"
)

// PaymentTransaction records one money movement in the ledger, usually
// settling a payslip. Account ids are opaque references to an external
// banking collaborator.
type PaymentTransaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PayslipID *uuid.UUID `gorm:"type:uuid;index" json:"payslip_id"`
	Payslip   *Payslip   `gorm:"foreignKey:PayslipID" json:"payslip,omitempty"`

	FromAccountID *uuid.UUID `gorm:"type:uuid" json:"from_account_id"`
	ToAccountID   *uuid.UUID `gorm:"type:uuid" json:"to_account_id"`

	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'TND'" json:"currency"`
	TransactionType string          `gorm:"type:varchar(30);not null" json:"transaction_type"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	Reference       string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"reference"` // TXN-XXXXXXXX
	TransactionDate time.Time `gorm:"not null" json:"transaction_date"`
	Notes           string    `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
