package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus enum constants, shared by payslips and ledger transactions.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

// Payslip is the computed salary statement for one contract and one
// (month, year) period. The composite unique index enforces at most one
// payslip per contract per period.
type Payslip struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index:idx_payslip_period,unique" json:"contract_id"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee   *User     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`

	PeriodMonth int `gorm:"not null;index:idx_payslip_period,unique" json:"period_month"` // 1-12
	PeriodYear  int `gorm:"not null;index:idx_payslip_period,unique" json:"period_year"`

	GrossSalary     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"gross_salary"`
	NetSalary       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"net_salary"`
	CNSSEmployee    decimal.Decimal `gorm:"column:cnss_employee;type:decimal(18,4);not null;default:0" json:"cnss_employee"`
	CNSSEmployer    decimal.Decimal `gorm:"column:cnss_employer;type:decimal(18,4);not null;default:0" json:"cnss_employer"`
	IRPP            decimal.Decimal `gorm:"column:irpp;type:decimal(18,4);not null;default:0" json:"irpp"` // monthly share of annual IRPP
	OtherDeductions decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"other_deductions"`
	Bonuses         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"bonuses"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'TND'" json:"currency"`

	PaymentStatus string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"payment_status"`
	PaymentDate   *time.Time `json:"payment_date"` // set when status becomes PAID

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
