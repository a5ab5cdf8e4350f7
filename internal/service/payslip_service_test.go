package service_test

import (
	"context"
	"testing"
	"time"

	"payroll/internal/model"
	"payroll/internal/service"
	ws "payroll/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// tunisianBrackets mirrors the seeded 2025 IRPP schedule as stored rows.
func tunisianBrackets() []model.TaxBracket {
	rows := []struct {
		min  string
		max  *decimal.Decimal
		rate string
	}{
		{"0", decPtr("5000"), "0"},
		{"5000", decPtr("20000"), "0.26"},
		{"20000", decPtr("30000"), "0.28"},
		{"30000", decPtr("50000"), "0.32"},
		{"50000", nil, "0.35"},
	}

	brackets := make([]model.TaxBracket, 0, len(rows))
	for _, r := range rows {
		brackets = append(brackets, model.TaxBracket{
			ID:         uuid.New(),
			Country:    "TN",
			TaxType:    model.TaxTypeIRPP,
			Rate:       dec(r.rate),
			MinBracket: dec(r.min),
			MaxBracket: r.max,
			IsActive:   true,
		})
	}
	return brackets
}

func activeContract(salary string) *model.Contract {
	return &model.Contract{
		ID:           uuid.New(),
		EmployeeID:   uuid.New(),
		SalaryBase:   dec(salary),
		Currency:     "TND",
		Country:      "TN",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ContractType: model.ContractTypeCDI,
		Status:       model.ContractStatusActive,
	}
}

func newPayslipService(
	payslips *fakePayslipRepo,
	contracts *fakeContractRepo,
	brackets *fakeBracketRepo,
) (service.PayslipService, *fakeAuditRepo) {
	audit := &fakeAuditRepo{}
	svc := service.NewPayslipService(payslips, contracts, brackets, audit, fakeTxManager{}, ws.NewHub())
	return svc, audit
}

func TestGeneratePayslip_ComputesBreakdown(t *testing.T) {
	contract := activeContract("3000")

	contracts := &fakeContractRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
			return contract, nil
		},
	}
	brackets := &fakeBracketRepo{
		findActiveFn: func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
			return tunisianBrackets(), nil
		},
	}

	var stored *model.Payslip
	payslips := &fakePayslipRepo{
		createFn: func(ctx context.Context, p *model.Payslip) error {
			p.ID = uuid.New()
			stored = p
			return nil
		},
	}

	svc, audit := newPayslipService(payslips, contracts, brackets)

	resp, err := svc.Generate(context.Background(), uuid.NewString(), service.GeneratePayslipRequest{
		ContractID:  contract.ID.String(),
		PeriodMonth: 3,
		PeriodYear:  2025,
	})

	assert.NoError(t, err)
	assert.Equal(t, "3000.00", resp.GrossSalary)
	assert.Equal(t, "275.40", resp.CNSSEmployee)
	assert.Equal(t, "497.10", resp.CNSSEmployer)
	assert.Equal(t, "718.33", resp.IRPP)
	assert.Equal(t, "2006.27", resp.NetSalary)
	assert.Equal(t, model.PaymentStatusPending, resp.PaymentStatus)
	assert.False(t, resp.TaxConfigMissing)

	assert.NotNil(t, stored)
	assert.Equal(t, contract.EmployeeID, stored.EmployeeID)
	assert.Len(t, audit.logged, 1)
	assert.Equal(t, model.ActionGeneratePayslip, audit.logged[0].Action)
}

func TestGeneratePayslip_IdempotentPerPeriod(t *testing.T) {
	contract := activeContract("3000")
	existing := &model.Payslip{
		ID:            uuid.New(),
		ContractID:    contract.ID,
		EmployeeID:    contract.EmployeeID,
		PeriodMonth:   3,
		PeriodYear:    2025,
		GrossSalary:   dec("3000"),
		NetSalary:     dec("2006.27"),
		Currency:      "TND",
		PaymentStatus: model.PaymentStatusPending,
	}

	contracts := &fakeContractRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
			return contract, nil
		},
	}

	created := 0
	payslips := &fakePayslipRepo{
		findByContractAndPeriodFn: func(ctx context.Context, contractID uuid.UUID, month, year int) (*model.Payslip, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, p *model.Payslip) error {
			created++
			return nil
		},
	}

	svc, audit := newPayslipService(payslips, contracts, &fakeBracketRepo{})

	resp, err := svc.Generate(context.Background(), uuid.NewString(), service.GeneratePayslipRequest{
		ContractID:  contract.ID.String(),
		PeriodMonth: 3,
		PeriodYear:  2025,
	})

	assert.NoError(t, err)
	assert.Equal(t, existing.ID.String(), resp.ID)
	assert.Equal(t, 0, created)
	assert.Empty(t, audit.logged)
}

func TestGeneratePayslip_RequiresActiveContract(t *testing.T) {
	contract := activeContract("3000")
	contract.Status = model.ContractStatusDraft

	contracts := &fakeContractRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
			return contract, nil
		},
	}

	svc, _ := newPayslipService(&fakePayslipRepo{}, contracts, &fakeBracketRepo{})

	_, err := svc.Generate(context.Background(), uuid.NewString(), service.GeneratePayslipRequest{
		ContractID:  contract.ID.String(),
		PeriodMonth: 3,
		PeriodYear:  2025,
	})

	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGeneratePayslip_RejectsBadPeriod(t *testing.T) {
	svc, _ := newPayslipService(&fakePayslipRepo{}, &fakeContractRepo{}, &fakeBracketRepo{})

	_, err := svc.Generate(context.Background(), uuid.NewString(), service.GeneratePayslipRequest{
		ContractID:  uuid.NewString(),
		PeriodMonth: 13,
		PeriodYear:  2025,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Generate(context.Background(), uuid.NewString(), service.GeneratePayslipRequest{
		ContractID:  uuid.NewString(),
		PeriodMonth: 3,
		PeriodYear:  1999,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGeneratePayslip_UnknownContract(t *testing.T) {
	svc, _ := newPayslipService(&fakePayslipRepo{}, &fakeContractRepo{}, &fakeBracketRepo{})

	_, err := svc.Generate(context.Background(), uuid.NewString(), service.GeneratePayslipRequest{
		ContractID:  uuid.NewString(),
		PeriodMonth: 3,
		PeriodYear:  2025,
	})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGeneratePayslip_MissingBracketsFlagsAndZeroesIRPP(t *testing.T) {
	contract := activeContract("3000")

	contracts := &fakeContractRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
			return contract, nil
		},
	}

	svc, _ := newPayslipService(&fakePayslipRepo{}, contracts, &fakeBracketRepo{})

	resp, err := svc.Generate(context.Background(), uuid.NewString(), service.GeneratePayslipRequest{
		ContractID:  contract.ID.String(),
		PeriodMonth: 3,
		PeriodYear:  2025,
	})

	assert.NoError(t, err)
	assert.True(t, resp.TaxConfigMissing)
	assert.Equal(t, "0.00", resp.IRPP)
	assert.Equal(t, "2724.60", resp.NetSalary) // gross minus employee CNSS only
}

func TestUpdatePaymentStatus_Transitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to paid", model.PaymentStatusPending, model.PaymentStatusPaid, true},
		{"pending to failed", model.PaymentStatusPending, model.PaymentStatusFailed, true},
		{"failed to pending", model.PaymentStatusFailed, model.PaymentStatusPending, true},
		{"paid to pending", model.PaymentStatusPaid, model.PaymentStatusPending, false},
		{"paid to failed", model.PaymentStatusPaid, model.PaymentStatusFailed, false},
		{"failed to paid", model.PaymentStatusFailed, model.PaymentStatusPaid, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payslip := &model.Payslip{
				ID:            uuid.New(),
				ContractID:    uuid.New(),
				EmployeeID:    uuid.New(),
				PeriodMonth:   3,
				PeriodYear:    2025,
				Currency:      "TND",
				PaymentStatus: tc.from,
			}

			payslips := &fakePayslipRepo{
				findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Payslip, error) {
					return payslip, nil
				},
			}

			svc, _ := newPayslipService(payslips, &fakeContractRepo{}, &fakeBracketRepo{})

			resp, err := svc.UpdatePaymentStatus(context.Background(), uuid.NewString(), payslip.ID.String(),
				service.UpdatePaymentStatusRequest{Status: tc.to})

			if !tc.allowed {
				assert.ErrorIs(t, err, service.ErrInvalidInput)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.to, resp.PaymentStatus)
			if tc.to == model.PaymentStatusPaid {
				assert.NotNil(t, resp.PaymentDate)
			} else {
				assert.Nil(t, resp.PaymentDate)
			}
		})
	}
}

func TestDeletePayslip_PendingOnly(t *testing.T) {
	payslip := &model.Payslip{
		ID:            uuid.New(),
		ContractID:    uuid.New(),
		EmployeeID:    uuid.New(),
		PaymentStatus: model.PaymentStatusPaid,
	}

	payslips := &fakePayslipRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Payslip, error) {
			return payslip, nil
		},
		deletePendingFn: func(ctx context.Context, id uuid.UUID) (int64, error) {
			return 0, nil // nothing matched, payment already settled
		},
	}

	svc, audit := newPayslipService(payslips, &fakeContractRepo{}, &fakeBracketRepo{})

	deleted, err := svc.Delete(context.Background(), uuid.NewString(), payslip.ID.String())
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, audit.logged)

	payslips.deletePendingFn = func(ctx context.Context, id uuid.UUID) (int64, error) {
		return 1, nil
	}

	deleted, err = svc.Delete(context.Background(), uuid.NewString(), payslip.ID.String())
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, audit.logged, 1)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	brackets := &fakeBracketRepo{
		findActiveFn: func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
			return tunisianBrackets(), nil
		},
	}

	created := 0
	payslips := &fakePayslipRepo{
		createFn: func(ctx context.Context, p *model.Payslip) error {
			created++
			return nil
		},
	}

	svc, audit := newPayslipService(payslips, &fakeContractRepo{}, brackets)

	resp, err := svc.Preview(context.Background(), service.PreviewRequest{GrossSalary: "3000"})

	assert.NoError(t, err)
	assert.Equal(t, "3000.00", resp.GrossSalary)
	assert.Equal(t, "275.40", resp.CNSSEmployee)
	assert.Equal(t, "8620.00", resp.AnnualIRPP)
	assert.Equal(t, "718.33", resp.MonthlyIRPP)
	assert.Equal(t, "2006.27", resp.NetSalary)
	assert.Equal(t, "0.3312", resp.DeductionRate)
	assert.Equal(t, "TN", resp.Country)
	assert.Equal(t, 0, created)
	assert.Empty(t, audit.logged)
}

func TestPreview_RejectsNonPositiveGross(t *testing.T) {
	svc, _ := newPayslipService(&fakePayslipRepo{}, &fakeContractRepo{}, &fakeBracketRepo{})

	for _, gross := range []string{"0", "-100", "abc"} {
		_, err := svc.Preview(context.Background(), service.PreviewRequest{GrossSalary: gross})
		assert.ErrorIs(t, err, service.ErrInvalidInput, "gross %q should be rejected", gross)
	}
}
