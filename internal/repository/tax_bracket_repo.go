package repository

import (
	"context"

	"payroll/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaxBracketRepository interface {
	Create(ctx context.Context, bracket *model.TaxBracket) error
	Update(ctx context.Context, bracket *model.TaxBracket) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxBracket, error)
	List(ctx context.Context, country string, page, limit int) ([]model.TaxBracket, int64, error)
	// FindActive returns active brackets for a (country, tax type) pair sorted
	// ascending by lower bound, ready for the progressive engine.
	FindActive(ctx context.Context, country, taxType string) ([]model.TaxBracket, error)
}

type taxBracketRepository struct {
	db *gorm.DB
}

func NewTaxBracketRepository(db *gorm.DB) TaxBracketRepository {
	return &taxBracketRepository{db: db}
}

func (r *taxBracketRepository) Create(ctx context.Context, bracket *model.TaxBracket) error {
	return GetDB(ctx, r.db).Create(bracket).Error
}

func (r *taxBracketRepository) Update(ctx context.Context, bracket *model.TaxBracket) error {
	return GetDB(ctx, r.db).Save(bracket).Error
}

func (r *taxBracketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaxBracket{}).Error
}

func (r *taxBracketRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxBracket, error) {
	var bracket model.TaxBracket
	if err := GetDB(ctx, r.db).First(&bracket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bracket, nil
}

func (r *taxBracketRepository) List(ctx context.Context, country string, page, limit int) ([]model.TaxBracket, int64, error) {
	var brackets []model.TaxBracket
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TaxBracket{})
	if country != "" {
		query = query.Where("country = ?", country)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("country, tax_type, min_bracket asc").Offset(offset).Limit(limit)
	if country != "" {
		fetch = fetch.Where("country = ?", country)
	}
	if err := fetch.Find(&brackets).Error; err != nil {
		return nil, 0, err
	}

	return brackets, total, nil
}

func (r *taxBracketRepository) FindActive(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
	var brackets []model.TaxBracket
	err := GetDB(ctx, r.db).
		Where("country = ? AND tax_type = ? AND is_active = true", country, taxType).
		Order("min_bracket asc").
		Find(&brackets).Error
	return brackets, err
}
