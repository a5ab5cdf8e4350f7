package service_test

import (
	"context"
	"testing"
	"time"

	"payroll/internal/model"
	"payroll/internal/service"
	ws "payroll/internal/websocket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newContractService(
	contracts *fakeContractRepo,
	history *fakeHistoryRepo,
) (service.ContractService, *fakeAuditRepo) {
	audit := &fakeAuditRepo{}
	svc := service.NewContractService(contracts, history, audit, fakeTxManager{}, ws.NewHub())
	return svc, audit
}

func contractInStatus(status string) *model.Contract {
	return &model.Contract{
		ID:           uuid.New(),
		EmployeeID:   uuid.New(),
		SalaryBase:   dec("2500"),
		Currency:     "TND",
		Country:      "TN",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ContractType: model.ContractTypeCDI,
		Status:       status,
	}
}

func findReturning(contract *model.Contract) *fakeContractRepo {
	return &fakeContractRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
			return contract, nil
		},
	}
}

func TestCreateContract_DefaultsToDraft(t *testing.T) {
	svc, audit := newContractService(&fakeContractRepo{}, &fakeHistoryRepo{})

	resp, err := svc.CreateContract(context.Background(), uuid.NewString(), model.RoleAdmin, service.CreateContractRequest{
		EmployeeID:   uuid.NewString(),
		SalaryBase:   "2500",
		StartDate:    "2025-01-01",
		ContractType: model.ContractTypeCDI,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.ContractStatusDraft, resp.Status)
	assert.Equal(t, "2500.00", resp.SalaryBase)
	assert.Equal(t, "TND", resp.Currency)
	assert.Equal(t, "TN", resp.Country)
	assert.False(t, resp.Signed)
	assert.Len(t, audit.logged, 1)
	assert.Equal(t, model.ActionCreateContract, audit.logged[0].Action)
}

func TestCreateContract_EmployerSkipsDraft(t *testing.T) {
	svc, _ := newContractService(&fakeContractRepo{}, &fakeHistoryRepo{})

	resp, err := svc.CreateContract(context.Background(), uuid.NewString(), model.RoleEmployer, service.CreateContractRequest{
		EmployeeID:   uuid.NewString(),
		SalaryBase:   "2500",
		StartDate:    "2025-01-01",
		ContractType: model.ContractTypeCDD,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.ContractStatusPendingSignature, resp.Status)
}

func TestCreateContract_Validation(t *testing.T) {
	svc, _ := newContractService(&fakeContractRepo{}, &fakeHistoryRepo{})

	base := service.CreateContractRequest{
		EmployeeID:   uuid.NewString(),
		SalaryBase:   "2500",
		StartDate:    "2025-01-01",
		ContractType: model.ContractTypeCDI,
	}

	cases := []struct {
		name   string
		mutate func(*service.CreateContractRequest)
	}{
		{"bad employee id", func(r *service.CreateContractRequest) { r.EmployeeID = "not-a-uuid" }},
		{"zero salary", func(r *service.CreateContractRequest) { r.SalaryBase = "0" }},
		{"negative salary", func(r *service.CreateContractRequest) { r.SalaryBase = "-100" }},
		{"unknown contract type", func(r *service.CreateContractRequest) { r.ContractType = "FREELANCE" }},
		{"bad start date", func(r *service.CreateContractRequest) { r.StartDate = "01/01/2025" }},
		{"end before start", func(r *service.CreateContractRequest) { r.EndDate = "2024-12-31" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := svc.CreateContract(context.Background(), uuid.NewString(), model.RoleAdmin, req)
			assert.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}
}

func TestSubmitContract_OnlyFromDraft(t *testing.T) {
	contract := contractInStatus(model.ContractStatusDraft)
	svc, _ := newContractService(findReturning(contract), &fakeHistoryRepo{})

	resp, err := svc.SubmitContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, model.ContractStatusPendingSignature, resp.Status)

	// Already submitted, second submit must fail.
	_, err = svc.SubmitContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSignContract_OnlyFromPendingSignature(t *testing.T) {
	contract := contractInStatus(model.ContractStatusPendingSignature)
	svc, audit := newContractService(findReturning(contract), &fakeHistoryRepo{})

	resp, err := svc.SignContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, model.ContractStatusActive, resp.Status)
	assert.True(t, resp.Signed)
	assert.NotNil(t, resp.SignedAt)
	assert.Len(t, audit.logged, 1)
	assert.Equal(t, model.ActionSignContract, audit.logged[0].Action)

	// Re-signing an active contract is rejected.
	_, err = svc.SignContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSignContract_NotFromDraft(t *testing.T) {
	contract := contractInStatus(model.ContractStatusDraft)
	svc, _ := newContractService(findReturning(contract), &fakeHistoryRepo{})

	_, err := svc.SignContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestTerminateContract(t *testing.T) {
	for _, status := range []string{model.ContractStatusPendingSignature, model.ContractStatusActive} {
		contract := contractInStatus(status)
		svc, _ := newContractService(findReturning(contract), &fakeHistoryRepo{})

		resp, err := svc.TerminateContract(context.Background(), uuid.NewString(), contract.ID.String())
		assert.NoError(t, err, "termination from %s should succeed", status)
		assert.Equal(t, model.ContractStatusTerminated, resp.Status)
		assert.NotNil(t, resp.EndDate)

		// Terminated contracts stay terminated.
		_, err = svc.TerminateContract(context.Background(), uuid.NewString(), contract.ID.String())
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	}
}

func TestTerminateContract_NotFromDraft(t *testing.T) {
	contract := contractInStatus(model.ContractStatusDraft)
	svc, _ := newContractService(findReturning(contract), &fakeHistoryRepo{})

	_, err := svc.TerminateContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestDeleteContract_DraftOnly(t *testing.T) {
	contract := contractInStatus(model.ContractStatusDraft)
	contracts := findReturning(contract)
	contracts.deleteDraftFn = func(ctx context.Context, id uuid.UUID) (int64, error) {
		return 1, nil
	}

	svc, audit := newContractService(contracts, &fakeHistoryRepo{})

	deleted, err := svc.DeleteContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, audit.logged, 1)

	// Past DRAFT the delete is a no-op, not an error.
	contracts.deleteDraftFn = func(ctx context.Context, id uuid.UUID) (int64, error) {
		return 0, nil
	}
	contract.Status = model.ContractStatusActive

	deleted, err = svc.DeleteContract(context.Background(), uuid.NewString(), contract.ID.String())
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, audit.logged, 1)
}

func TestDeleteContract_NotFound(t *testing.T) {
	svc, _ := newContractService(&fakeContractRepo{}, &fakeHistoryRepo{})

	_, err := svc.DeleteContract(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestChangeSalary_AppendsHistory(t *testing.T) {
	contract := contractInStatus(model.ContractStatusActive)

	var recorded *model.SalaryHistory
	history := &fakeHistoryRepo{
		appendFn: func(ctx context.Context, entry *model.SalaryHistory) error {
			entry.ID = uuid.New()
			recorded = entry
			return nil
		},
	}

	svc, audit := newContractService(findReturning(contract), history)

	resp, err := svc.ChangeSalary(context.Background(), uuid.NewString(), contract.ID.String(), service.ChangeSalaryRequest{
		NewSalary:     "2800",
		Reason:        "annual raise",
		EffectiveDate: "2025-07-01",
	})

	assert.NoError(t, err)
	assert.Equal(t, "2800.00", resp.SalaryBase)
	assert.NotNil(t, recorded)
	assert.Equal(t, contract.ID, recorded.ContractID)
	assert.Equal(t, "2500", recorded.OldSalary.String())
	assert.Equal(t, "2800", recorded.NewSalary.String())
	assert.Equal(t, "annual raise", recorded.Reason)
	assert.Len(t, audit.logged, 1)
	assert.Equal(t, model.ActionChangeSalary, audit.logged[0].Action)
}

func TestChangeSalary_RequiresActiveContract(t *testing.T) {
	for _, status := range []string{
		model.ContractStatusDraft,
		model.ContractStatusPendingSignature,
		model.ContractStatusTerminated,
	} {
		contract := contractInStatus(status)
		svc, _ := newContractService(findReturning(contract), &fakeHistoryRepo{})

		_, err := svc.ChangeSalary(context.Background(), uuid.NewString(), contract.ID.String(), service.ChangeSalaryRequest{
			NewSalary: "2800",
			Reason:    "raise",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput, "status %s should reject salary change", status)
	}
}

func TestChangeSalary_RejectsNonPositive(t *testing.T) {
	contract := contractInStatus(model.ContractStatusActive)
	svc, _ := newContractService(findReturning(contract), &fakeHistoryRepo{})

	for _, salary := range []string{"0", "-500"} {
		_, err := svc.ChangeSalary(context.Background(), uuid.NewString(), contract.ID.String(), service.ChangeSalaryRequest{
			NewSalary: salary,
			Reason:    "bad raise",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	}
}

func TestUpdateContract_DraftOnly(t *testing.T) {
	contract := contractInStatus(model.ContractStatusActive)
	svc, _ := newContractService(findReturning(contract), &fakeHistoryRepo{})

	salary := "2600"
	_, err := svc.UpdateContract(context.Background(), uuid.NewString(), contract.ID.String(), service.UpdateContractRequest{
		SalaryBase: &salary,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestListContracts_RequiresFilter(t *testing.T) {
	svc, _ := newContractService(&fakeContractRepo{}, &fakeHistoryRepo{})

	_, err := svc.ListContracts(context.Background(), service.ContractFilter{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestActiveContract(t *testing.T) {
	contract := contractInStatus(model.ContractStatusActive)
	contracts := &fakeContractRepo{
		findActiveByEmployeeFn: func(ctx context.Context, employeeID uuid.UUID) (*model.Contract, error) {
			return contract, nil
		},
	}

	svc, _ := newContractService(contracts, &fakeHistoryRepo{})

	resp, err := svc.ActiveContract(context.Background(), contract.EmployeeID.String())
	assert.NoError(t, err)
	assert.Equal(t, contract.ID.String(), resp.ID)
}

func TestActiveContract_NoneFound(t *testing.T) {
	svc, _ := newContractService(&fakeContractRepo{}, &fakeHistoryRepo{})

	_, err := svc.ActiveContract(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
