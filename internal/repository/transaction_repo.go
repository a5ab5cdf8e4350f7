package repository

import (
	"context"

	"payroll/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.PaymentTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTransaction, error)
	CountByReference(ctx context.Context, reference string) (int64, error)
	FindByPayslip(ctx context.Context, payslipID uuid.UUID) ([]model.PaymentTransaction, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.PaymentTransaction, error)
	Update(ctx context.Context, tx *model.PaymentTransaction) error
	// SumPaidByEmployee totals PAID transaction amounts joined through the
	// owning payslip. Zero when the employee has none.
	SumPaidByEmployee(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.PaymentTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTransaction, error) {
	var tx model.PaymentTransaction
	if err := GetDB(ctx, r.db).First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) CountByReference(ctx context.Context, reference string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.PaymentTransaction{}).
		Where("reference = ?", reference).
		Count(&count).Error
	return count, err
}

func (r *transactionRepository) FindByPayslip(ctx context.Context, payslipID uuid.UUID) ([]model.PaymentTransaction, error) {
	var txs []model.PaymentTransaction
	err := GetDB(ctx, r.db).
		Where("payslip_id = ?", payslipID).
		Order("transaction_date desc").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.PaymentTransaction, error) {
	var txs []model.PaymentTransaction
	err := GetDB(ctx, r.db).
		Joins("JOIN payslips ON payslips.id = payment_transactions.payslip_id").
		Where("payslips.employee_id = ?", employeeID).
		Order("payment_transactions.transaction_date desc").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) Update(ctx context.Context, tx *model.PaymentTransaction) error {
	return GetDB(ctx, r.db).Save(tx).Error
}

func (r *transactionRepository) SumPaidByEmployee(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).
		Model(&model.PaymentTransaction{}).
		Select("COALESCE(SUM(payment_transactions.amount), 0) as total").
		Joins("JOIN payslips ON payslips.id = payment_transactions.payslip_id").
		Where("payslips.employee_id = ? AND payment_transactions.status = ?", employeeID, model.PaymentStatusPaid).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
