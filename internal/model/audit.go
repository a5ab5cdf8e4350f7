package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateContract    = "CREATE_CONTRACT"
	ActionUpdateContract    = "UPDATE_CONTRACT"
	ActionSubmitContract    = "SUBMIT_CONTRACT"
	ActionSignContract      = "SIGN_CONTRACT"
	ActionTerminateContract = "TERMINATE_CONTRACT"
	ActionDeleteContract    = "DELETE_CONTRACT"
	ActionChangeSalary      = "CHANGE_SALARY"

	ActionGeneratePayslip     = "GENERATE_PAYSLIP"
	ActionUpdatePayslipStatus = "UPDATE_PAYSLIP_STATUS"
	ActionDeletePayslip       = "DELETE_PAYSLIP"
	ActionCreateTransaction   = "CREATE_TRANSACTION"
	ActionUpdateTransaction   = "UPDATE_TRANSACTION_STATUS"
	ActionCreateTaxBracket    = "CREATE_TAX_BRACKET"
	ActionUpdateTaxBracket    = "UPDATE_TAX_BRACKET"
	ActionDeleteTaxBracket    = "DELETE_TAX_BRACKET"
)

// AuditLog tracks Who, What, and When for critical payroll changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for automated/system actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // human readable label
	Details    string     `gorm:"type:jsonb" json:"details"`                      // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
