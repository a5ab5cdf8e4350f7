package repository

import (
	"context"

	"payroll/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalaryHistoryRepository is append-only: there is deliberately no update or
// delete method.
type SalaryHistoryRepository interface {
	Append(ctx context.Context, entry *model.SalaryHistory) error
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.SalaryHistory, error)
}

type salaryHistoryRepository struct {
	db *gorm.DB
}

func NewSalaryHistoryRepository(db *gorm.DB) SalaryHistoryRepository {
	return &salaryHistoryRepository{db: db}
}

func (r *salaryHistoryRepository) Append(ctx context.Context, entry *model.SalaryHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *salaryHistoryRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.SalaryHistory, error) {
	var entries []model.SalaryHistory
	err := GetDB(ctx, r.db).
		Where("contract_id = ?", contractID).
		Order("effective_date desc, created_at desc").
		Find(&entries).Error
	return entries, err
}
