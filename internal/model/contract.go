package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus enum constants
const (
	ContractStatusDraft            = "DRAFT"
	ContractStatusPendingSignature = "PENDING_SIGNATURE"
	ContractStatusActive           = "ACTIVE"
	ContractStatusTerminated       = "TERMINATED"
)

// ContractType enum constants
const (
	ContractTypeCDI   = "CDI"   // open-ended
	ContractTypeCDD   = "CDD"   // fixed-term
	ContractTypeSIVP  = "SIVP"  // first-employment internship scheme
	ContractTypeStage = "STAGE" // internship
)

// Contract represents an employment contract, the root entity of the payroll
// engine. Payslips and salary history reference it by id.
type Contract struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee   *User      `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	EmployerID *uuid.UUID `gorm:"type:uuid;index" json:"employer_id"`
	Employer   *User      `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
	JobOfferID *uuid.UUID `gorm:"type:uuid" json:"job_offer_id"` // opaque reference, recruitment is out of scope

	SalaryBase decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"salary_base"` // monthly gross
	Currency   string          `gorm:"type:varchar(3);not null;default:'TND'" json:"currency"`
	Country    string          `gorm:"type:varchar(2);not null;default:'TN'" json:"country"` // tax jurisdiction

	StartDate time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date"` // nil = open-ended

	ContractType string `gorm:"type:varchar(10);not null" json:"contract_type"`
	Status       string `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`

	Signed   bool       `gorm:"not null;default:false" json:"signed"`
	SignedAt *time.Time `json:"signed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidContractType reports whether t is one of the closed contract type set.
func ValidContractType(t string) bool {
	switch t {
	case ContractTypeCDI, ContractTypeCDD, ContractTypeSIVP, ContractTypeStage:
		return true
	}
	return false
}
