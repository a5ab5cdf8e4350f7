package service_test

import (
	"context"
	"testing"

	"payroll/internal/model"
	"payroll/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newBracketService(brackets *fakeBracketRepo) (service.TaxBracketService, *fakeAuditRepo) {
	audit := &fakeAuditRepo{}
	svc := service.NewTaxBracketService(brackets, audit, fakeTxManager{})
	return svc, audit
}

func TestCalculateIRPP(t *testing.T) {
	brackets := &fakeBracketRepo{
		findActiveFn: func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
			return tunisianBrackets(), nil
		},
	}

	svc, _ := newBracketService(brackets)

	result, err := svc.CalculateIRPP(context.Background(), "120000", "TN")

	assert.NoError(t, err)
	assert.Equal(t, "120000.00", result.AnnualIncome)
	assert.Equal(t, "37600.00", result.AnnualIRPP)
	assert.Equal(t, "3133.33", result.MonthlyIRPP)
	assert.Equal(t, "TN", result.Country)
}

func TestCalculateIRPP_DefaultsCountry(t *testing.T) {
	var requested string
	brackets := &fakeBracketRepo{
		findActiveFn: func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
			requested = country
			return tunisianBrackets(), nil
		},
	}

	svc, _ := newBracketService(brackets)

	_, err := svc.CalculateIRPP(context.Background(), "36000", "")
	assert.NoError(t, err)
	assert.Equal(t, "TN", requested)
}

func TestCalculateIRPP_NoActiveBrackets(t *testing.T) {
	svc, _ := newBracketService(&fakeBracketRepo{})

	_, err := svc.CalculateIRPP(context.Background(), "36000", "FR")
	assert.ErrorIs(t, err, service.ErrConfigurationMissing)
}

func TestCalculateIRPP_RejectsNegativeIncome(t *testing.T) {
	svc, _ := newBracketService(&fakeBracketRepo{})

	_, err := svc.CalculateIRPP(context.Background(), "-5000", "TN")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCreateBracket_ValidatesResultingActiveSet(t *testing.T) {
	// The new bracket would leave a gap in the active table, so the create
	// must fail and roll back.
	brackets := &fakeBracketRepo{
		findActiveFn: func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
			rows := tunisianBrackets()
			rows = append(rows, model.TaxBracket{
				ID:         uuid.New(),
				Country:    "TN",
				TaxType:    model.TaxTypeIRPP,
				Rate:       dec("0.40"),
				MinBracket: dec("200000"),
				IsActive:   true,
			})
			return rows, nil
		},
	}

	svc, audit := newBracketService(brackets)

	_, err := svc.CreateBracket(context.Background(), uuid.NewString(), service.CreateTaxBracketRequest{
		Country:    "TN",
		TaxType:    model.TaxTypeIRPP,
		Rate:       "0.40",
		MinBracket: "200000",
	})

	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Empty(t, audit.logged)
}

func TestCreateBracket_InactiveSkipsValidation(t *testing.T) {
	validated := 0
	brackets := &fakeBracketRepo{
		findActiveFn: func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
			validated++
			return nil, nil
		},
	}

	svc, audit := newBracketService(brackets)

	inactive := false
	resp, err := svc.CreateBracket(context.Background(), uuid.NewString(), service.CreateTaxBracketRequest{
		Country:    "TN",
		TaxType:    model.TaxTypeIRPP,
		Rate:       "0.40",
		MinBracket: "200000",
		IsActive:   &inactive,
	})

	assert.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, 0, validated)
	assert.Len(t, audit.logged, 1)
	assert.Equal(t, model.ActionCreateTaxBracket, audit.logged[0].Action)
}

func TestUpdateBracket_DeactivateSkipsValidation(t *testing.T) {
	bracket := &model.TaxBracket{
		ID:         uuid.New(),
		Country:    "TN",
		TaxType:    model.TaxTypeIRPP,
		Rate:       dec("0.35"),
		MinBracket: dec("50000"),
		IsActive:   true,
	}

	validated := 0
	brackets := &fakeBracketRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.TaxBracket, error) {
			return bracket, nil
		},
		findActiveFn: func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
			validated++
			return nil, nil
		},
	}

	svc, _ := newBracketService(brackets)

	inactive := false
	resp, err := svc.UpdateBracket(context.Background(), uuid.NewString(), bracket.ID.String(),
		service.UpdateTaxBracketRequest{IsActive: &inactive})

	assert.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, 0, validated)
}

func TestDeleteBracket_NotFound(t *testing.T) {
	svc, _ := newBracketService(&fakeBracketRepo{})

	err := svc.DeleteBracket(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
