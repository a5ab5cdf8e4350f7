package repository

import (
	"context"

	"payroll/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayslipTotals aggregates the money columns of an employee's payslips.
type PayslipTotals struct {
	PayslipCount    int64
	TotalGross      decimal.Decimal
	TotalNet        decimal.Decimal
	TotalCNSS       decimal.Decimal
	TotalIRPP       decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalBonuses    decimal.Decimal
}

type SummaryRepository interface {
	PayslipTotalsByEmployee(ctx context.Context, employeeID uuid.UUID) (*PayslipTotals, error)
	CountPayslipsByStatus(ctx context.Context, employeeID uuid.UUID, status string) (int64, error)
}

type summaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) PayslipTotalsByEmployee(ctx context.Context, employeeID uuid.UUID) (*PayslipTotals, error) {
	var totals PayslipTotals
	err := GetDB(ctx, r.db).
		Model(&model.Payslip{}).
		Select(`COUNT(*) as payslip_count,
			COALESCE(SUM(gross_salary), 0) as total_gross,
			COALESCE(SUM(net_salary), 0) as total_net,
			COALESCE(SUM(cnss_employee), 0) as total_cnss,
			COALESCE(SUM(irpp), 0) as total_irpp,
			COALESCE(SUM(other_deductions), 0) as total_deductions,
			COALESCE(SUM(bonuses), 0) as total_bonuses`).
		Where("employee_id = ?", employeeID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *summaryRepository) CountPayslipsByStatus(ctx context.Context, employeeID uuid.UUID, status string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.Payslip{}).
		Where("employee_id = ? AND payment_status = ?", employeeID, status).
		Count(&count).Error
	return count, err
}
