package repository

import (
	"context"

	"payroll/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository interface {
	Create(ctx context.Context, contract *model.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Contract, error)
	FindByEmployer(ctx context.Context, employerID uuid.UUID) ([]model.Contract, error)
	FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (*model.Contract, error)
	FindByStatus(ctx context.Context, status string) ([]model.Contract, error)
	Update(ctx context.Context, contract *model.Contract) error
	// DeleteDraft removes the contract only while it is still a DRAFT and
	// reports how many rows were affected (0 means the guard blocked it).
	DeleteDraft(ctx context.Context, id uuid.UUID) (int64, error)
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return GetDB(ctx, r.db).Create(contract).Error
}

func (r *contractRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := GetDB(ctx, r.db).Preload("Employee").Preload("Employer").First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := GetDB(ctx, r.db).
		Where("employee_id = ?", employeeID).
		Order("created_at desc").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByEmployer(ctx context.Context, employerID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := GetDB(ctx, r.db).
		Where("employer_id = ?", employerID).
		Order("created_at desc").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := GetDB(ctx, r.db).
		Where("employee_id = ? AND status = ?", employeeID, model.ContractStatusActive).
		Order("created_at desc").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByStatus(ctx context.Context, status string) ([]model.Contract, error) {
	var contracts []model.Contract
	err := GetDB(ctx, r.db).
		Where("status = ?", status).
		Order("created_at desc").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) Update(ctx context.Context, contract *model.Contract) error {
	return GetDB(ctx, r.db).Save(contract).Error
}

func (r *contractRepository) DeleteDraft(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).
		Where("id = ? AND status = ?", id, model.ContractStatusDraft).
		Delete(&model.Contract{})
	return res.RowsAffected, res.Error
}
