package repository

import (
	"context"

	"payroll/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayslipRepository interface {
	Create(ctx context.Context, payslip *model.Payslip) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payslip, error)
	FindByContractAndPeriod(ctx context.Context, contractID uuid.UUID, month, year int) (*model.Payslip, error)
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.Payslip, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Payslip, error)
	Update(ctx context.Context, payslip *model.Payslip) error
	// DeletePending removes the payslip only while payment is still PENDING.
	DeletePending(ctx context.Context, id uuid.UUID) (int64, error)
}

type payslipRepository struct {
	db *gorm.DB
}

func NewPayslipRepository(db *gorm.DB) PayslipRepository {
	return &payslipRepository{db: db}
}

func (r *payslipRepository) Create(ctx context.Context, payslip *model.Payslip) error {
	return GetDB(ctx, r.db).Create(payslip).Error
}

func (r *payslipRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payslip, error) {
	var payslip model.Payslip
	if err := GetDB(ctx, r.db).Preload("Employee").First(&payslip, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *payslipRepository) FindByContractAndPeriod(ctx context.Context, contractID uuid.UUID, month, year int) (*model.Payslip, error) {
	var payslip model.Payslip
	err := GetDB(ctx, r.db).
		Where("contract_id = ? AND period_month = ? AND period_year = ?", contractID, month, year).
		First(&payslip).Error
	if err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *payslipRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.Payslip, error) {
	var payslips []model.Payslip
	err := GetDB(ctx, r.db).
		Where("contract_id = ?", contractID).
		Order("period_year desc, period_month desc").
		Find(&payslips).Error
	return payslips, err
}

func (r *payslipRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Payslip, error) {
	var payslips []model.Payslip
	err := GetDB(ctx, r.db).
		Where("employee_id = ?", employeeID).
		Order("period_year desc, period_month desc").
		Find(&payslips).Error
	return payslips, err
}

func (r *payslipRepository) Update(ctx context.Context, payslip *model.Payslip) error {
	return GetDB(ctx, r.db).Save(payslip).Error
}

func (r *payslipRepository) DeletePending(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).
		Where("id = ? AND payment_status = ?", id, model.PaymentStatusPending).
		Delete(&model.Payslip{})
	return res.RowsAffected, res.Error
}
