package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payroll/internal/model"
	"payroll/internal/repository"
	"payroll/internal/tax"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTaxBracketRequest struct {
	Country       string `json:"country" binding:"required"`
	TaxType       string `json:"tax_type" binding:"required,oneof=IRPP CNSS"`
	Rate          string `json:"rate" binding:"required"`
	MinBracket    string `json:"min_bracket" binding:"required"`
	MaxBracket    string `json:"max_bracket"` // empty = unbounded top bracket
	Description   string `json:"description"`
	EffectiveDate string `json:"effective_date"` // YYYY-MM-DD
	IsActive      *bool  `json:"is_active"`
}

type UpdateTaxBracketRequest struct {
	Rate          *string `json:"rate"`
	MinBracket    *string `json:"min_bracket"`
	MaxBracket    *string `json:"max_bracket"` // "" clears to unbounded
	Description   *string `json:"description"`
	EffectiveDate *string `json:"effective_date"`
	IsActive      *bool   `json:"is_active"`
}

type TaxBracketResponse struct {
	ID            string  `json:"id"`
	Country       string  `json:"country"`
	TaxType       string  `json:"tax_type"`
	Rate          string  `json:"rate"`
	MinBracket    string  `json:"min_bracket"`
	MaxBracket    *string `json:"max_bracket"`
	Description   string  `json:"description"`
	EffectiveDate *string `json:"effective_date"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
}

type IRPPResult struct {
	AnnualIncome string `json:"annual_income"`
	AnnualIRPP   string `json:"annual_irpp"`
	MonthlyIRPP  string `json:"monthly_irpp"`
	Country      string `json:"country"`
}

// --- Interface ---

type TaxBracketService interface {
	CreateBracket(ctx context.Context, userID string, req CreateTaxBracketRequest) (TaxBracketResponse, error)
	UpdateBracket(ctx context.Context, userID string, id string, req UpdateTaxBracketRequest) (TaxBracketResponse, error)
	DeleteBracket(ctx context.Context, userID string, id string) error
	GetBracket(ctx context.Context, id string) (TaxBracketResponse, error)
	ListBrackets(ctx context.Context, country string, page, limit int) ([]TaxBracketResponse, int64, error)
	// CalculateIRPP runs the progressive engine over the active IRPP table for
	// a country. An empty table yields ErrConfigurationMissing.
	CalculateIRPP(ctx context.Context, annualIncome string, country string) (IRPPResult, error)
}

type taxBracketService struct {
	bracketRepo repository.TaxBracketRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewTaxBracketService(
	bracketRepo repository.TaxBracketRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TaxBracketService {
	return &taxBracketService{
		bracketRepo: bracketRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *taxBracketService) CreateBracket(ctx context.Context, userID string, req CreateTaxBracketRequest) (TaxBracketResponse, error) {
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return TaxBracketResponse{}, fmt.Errorf("%w: rate must be a decimal", ErrInvalidInput)
	}

	minBracket, err := decimal.NewFromString(req.MinBracket)
	if err != nil || minBracket.IsNegative() {
		return TaxBracketResponse{}, fmt.Errorf("%w: min_bracket must be a non-negative decimal", ErrInvalidInput)
	}

	var maxBracket *decimal.Decimal
	if req.MaxBracket != "" {
		parsed, parseErr := decimal.NewFromString(req.MaxBracket)
		if parseErr != nil {
			return TaxBracketResponse{}, fmt.Errorf("%w: max_bracket must be a decimal", ErrInvalidInput)
		}
		maxBracket = &parsed
	}

	var effectiveDate *time.Time
	if req.EffectiveDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.EffectiveDate)
		if parseErr != nil {
			return TaxBracketResponse{}, fmt.Errorf("%w: effective_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		effectiveDate = &parsed
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	bracket := model.TaxBracket{
		Country:       req.Country,
		TaxType:       req.TaxType,
		Rate:          rate,
		MinBracket:    minBracket,
		MaxBracket:    maxBracket,
		Description:   req.Description,
		EffectiveDate: effectiveDate,
		IsActive:      isActive,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.bracketRepo.Create(txCtx, &bracket); createErr != nil {
			return fmt.Errorf("failed to create tax bracket: %w", createErr)
		}

		if bracket.IsActive {
			if validateErr := s.validateActiveSet(txCtx, bracket.Country, bracket.TaxType); validateErr != nil {
				return validateErr
			}
		}

		return s.writeAudit(txCtx, userID, model.ActionCreateTaxBracket, &bracket, req)
	})
	if err != nil {
		return TaxBracketResponse{}, err
	}

	return toTaxBracketResponse(bracket), nil
}

func (s *taxBracketService) UpdateBracket(ctx context.Context, userID string, id string, req UpdateTaxBracketRequest) (TaxBracketResponse, error) {
	bracketID, err := uuid.Parse(id)
	if err != nil {
		return TaxBracketResponse{}, fmt.Errorf("%w: invalid tax bracket id", ErrInvalidInput)
	}

	var bracket *model.TaxBracket
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		bracket, findErr = s.bracketRepo.FindByID(txCtx, bracketID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: tax bracket %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load tax bracket: %w", findErr)
		}

		if req.Rate != nil {
			rate, parseErr := decimal.NewFromString(*req.Rate)
			if parseErr != nil {
				return fmt.Errorf("%w: rate must be a decimal", ErrInvalidInput)
			}
			bracket.Rate = rate
		}
		if req.MinBracket != nil {
			minBracket, parseErr := decimal.NewFromString(*req.MinBracket)
			if parseErr != nil || minBracket.IsNegative() {
				return fmt.Errorf("%w: min_bracket must be a non-negative decimal", ErrInvalidInput)
			}
			bracket.MinBracket = minBracket
		}
		if req.MaxBracket != nil {
			if *req.MaxBracket == "" {
				bracket.MaxBracket = nil
			} else {
				maxBracket, parseErr := decimal.NewFromString(*req.MaxBracket)
				if parseErr != nil {
					return fmt.Errorf("%w: max_bracket must be a decimal", ErrInvalidInput)
				}
				bracket.MaxBracket = &maxBracket
			}
		}
		if req.Description != nil {
			bracket.Description = *req.Description
		}
		if req.EffectiveDate != nil {
			if *req.EffectiveDate == "" {
				bracket.EffectiveDate = nil
			} else {
				effectiveDate, parseErr := time.Parse("2006-01-02", *req.EffectiveDate)
				if parseErr != nil {
					return fmt.Errorf("%w: effective_date must be YYYY-MM-DD", ErrInvalidInput)
				}
				bracket.EffectiveDate = &effectiveDate
			}
		}
		if req.IsActive != nil {
			bracket.IsActive = *req.IsActive
		}

		if updateErr := s.bracketRepo.Update(txCtx, bracket); updateErr != nil {
			return fmt.Errorf("failed to update tax bracket: %w", updateErr)
		}

		if bracket.IsActive {
			if validateErr := s.validateActiveSet(txCtx, bracket.Country, bracket.TaxType); validateErr != nil {
				return validateErr
			}
		}

		return s.writeAudit(txCtx, userID, model.ActionUpdateTaxBracket, bracket, req)
	})
	if err != nil {
		return TaxBracketResponse{}, err
	}

	return toTaxBracketResponse(*bracket), nil
}

func (s *taxBracketService) DeleteBracket(ctx context.Context, userID string, id string) error {
	bracketID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid tax bracket id", ErrInvalidInput)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		bracket, findErr := s.bracketRepo.FindByID(txCtx, bracketID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: tax bracket %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load tax bracket: %w", findErr)
		}

		if delErr := s.bracketRepo.Delete(txCtx, bracketID); delErr != nil {
			return fmt.Errorf("failed to delete tax bracket: %w", delErr)
		}

		return s.writeAudit(txCtx, userID, model.ActionDeleteTaxBracket, bracket, nil)
	})
}

func (s *taxBracketService) GetBracket(ctx context.Context, id string) (TaxBracketResponse, error) {
	bracketID, err := uuid.Parse(id)
	if err != nil {
		return TaxBracketResponse{}, fmt.Errorf("%w: invalid tax bracket id", ErrInvalidInput)
	}

	bracket, err := s.bracketRepo.FindByID(ctx, bracketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaxBracketResponse{}, fmt.Errorf("%w: tax bracket %s", ErrNotFound, id)
		}
		return TaxBracketResponse{}, fmt.Errorf("failed to load tax bracket: %w", err)
	}
	return toTaxBracketResponse(*bracket), nil
}

func (s *taxBracketService) ListBrackets(ctx context.Context, country string, page, limit int) ([]TaxBracketResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	brackets, total, err := s.bracketRepo.List(ctx, country, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tax brackets: %w", err)
	}

	result := make([]TaxBracketResponse, 0, len(brackets))
	for _, b := range brackets {
		result = append(result, toTaxBracketResponse(b))
	}
	return result, total, nil
}

func (s *taxBracketService) CalculateIRPP(ctx context.Context, annualIncome string, country string) (IRPPResult, error) {
	income, err := decimal.NewFromString(annualIncome)
	if err != nil || income.IsNegative() {
		return IRPPResult{}, fmt.Errorf("%w: annual income must be a non-negative decimal", ErrInvalidInput)
	}

	if country == "" {
		country = "TN"
	}

	rows, err := s.bracketRepo.FindActive(ctx, country, model.TaxTypeIRPP)
	if err != nil {
		return IRPPResult{}, fmt.Errorf("failed to load tax brackets: %w", err)
	}
	if len(rows) == 0 {
		return IRPPResult{}, fmt.Errorf("%w: no active IRPP brackets for %s", ErrConfigurationMissing, country)
	}

	annual := tax.Calculate(income, toEngineBrackets(rows))
	monthly := annual.Div(twelve).Round(2)

	return IRPPResult{
		AnnualIncome: income.StringFixed(2),
		AnnualIRPP:   annual.StringFixed(2),
		MonthlyIRPP:  monthly.StringFixed(2),
		Country:      country,
	}, nil
}

// --- Helpers ---

// validateActiveSet runs the structural invariants against the full active
// table the mutation produced; a violation rolls the transaction back.
func (s *taxBracketService) validateActiveSet(ctx context.Context, country, taxType string) error {
	rows, err := s.bracketRepo.FindActive(ctx, country, taxType)
	if err != nil {
		return fmt.Errorf("failed to load tax brackets: %w", err)
	}
	if err := tax.Validate(toEngineBrackets(rows)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func toEngineBrackets(rows []model.TaxBracket) []tax.Bracket {
	brackets := make([]tax.Bracket, 0, len(rows))
	for _, row := range rows {
		brackets = append(brackets, tax.Bracket{
			Lower: row.MinBracket,
			Upper: row.MaxBracket,
			Rate:  row.Rate,
		})
	}
	return brackets
}

func (s *taxBracketService) writeAudit(ctx context.Context, userID string, action string, bracket *model.TaxBracket, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	audit := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   bracket.ID.String(),
		EntityName: bracket.Country + " " + bracket.TaxType,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// --- Mapping ---

func toTaxBracketResponse(b model.TaxBracket) TaxBracketResponse {
	resp := TaxBracketResponse{
		ID:          b.ID.String(),
		Country:     b.Country,
		TaxType:     b.TaxType,
		Rate:        b.Rate.String(),
		MinBracket:  b.MinBracket.StringFixed(2),
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}

	if b.MaxBracket != nil {
		v := b.MaxBracket.StringFixed(2)
		resp.MaxBracket = &v
	}
	if b.EffectiveDate != nil {
		v := b.EffectiveDate.Format("2006-01-02")
		resp.EffectiveDate = &v
	}

	return resp
}
