package service_test

import (
	"context"
	"regexp"
	"testing"

	"payroll/internal/model"
	"payroll/internal/service"
	ws "payroll/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var referencePattern = regexp.MustCompile(`^TXN-[0-9A-F]{8}$`)

func newTransactionService(
	transactions *fakeTransactionRepo,
	payslips *fakePayslipRepo,
) (service.TransactionService, *fakeAuditRepo) {
	audit := &fakeAuditRepo{}
	svc := service.NewTransactionService(transactions, payslips, audit, fakeTxManager{}, ws.NewHub())
	return svc, audit
}

func TestCreateTransaction_GeneratesReference(t *testing.T) {
	var stored *model.PaymentTransaction
	transactions := &fakeTransactionRepo{
		createFn: func(ctx context.Context, tx *model.PaymentTransaction) error {
			tx.ID = uuid.New()
			stored = tx
			return nil
		},
	}

	svc, audit := newTransactionService(transactions, &fakePayslipRepo{})

	resp, err := svc.CreateTransaction(context.Background(), uuid.NewString(), service.CreateTransactionRequest{
		Amount:          "2006.27",
		TransactionType: model.TransactionTypeSalary,
	})

	assert.NoError(t, err)
	assert.Regexp(t, referencePattern, resp.Reference)
	assert.Equal(t, model.PaymentStatusPending, resp.Status)
	assert.Equal(t, "2006.27", resp.Amount)
	assert.Equal(t, "TND", resp.Currency)
	assert.NotNil(t, stored)
	assert.Len(t, audit.logged, 1)
	assert.Equal(t, model.ActionCreateTransaction, audit.logged[0].Action)
}

func TestCreateTransaction_DistinctReferences(t *testing.T) {
	transactions := &fakeTransactionRepo{}
	svc, _ := newTransactionService(transactions, &fakePayslipRepo{})

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		resp, err := svc.CreateTransaction(context.Background(), uuid.NewString(), service.CreateTransactionRequest{
			Amount:          "100",
			TransactionType: model.TransactionTypeBonus,
		})
		assert.NoError(t, err)
		assert.False(t, seen[resp.Reference], "reference %s repeated", resp.Reference)
		seen[resp.Reference] = true
	}
}

func TestCreateTransaction_RetriesOnReferenceCollision(t *testing.T) {
	calls := 0
	transactions := &fakeTransactionRepo{
		countByReferenceFn: func(ctx context.Context, reference string) (int64, error) {
			calls++
			if calls == 1 {
				return 1, nil // first candidate already taken
			}
			return 0, nil
		},
	}

	svc, _ := newTransactionService(transactions, &fakePayslipRepo{})

	resp, err := svc.CreateTransaction(context.Background(), uuid.NewString(), service.CreateTransactionRequest{
		Amount:          "100",
		TransactionType: model.TransactionTypeSalary,
	})

	assert.NoError(t, err)
	assert.Regexp(t, referencePattern, resp.Reference)
	assert.Equal(t, 2, calls)
}

func TestCreateTransaction_ReferenceRetriesExhausted(t *testing.T) {
	transactions := &fakeTransactionRepo{
		countByReferenceFn: func(ctx context.Context, reference string) (int64, error) {
			return 1, nil // every candidate collides
		},
	}

	svc, _ := newTransactionService(transactions, &fakePayslipRepo{})

	_, err := svc.CreateTransaction(context.Background(), uuid.NewString(), service.CreateTransactionRequest{
		Amount:          "100",
		TransactionType: model.TransactionTypeSalary,
	})

	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestCreateTransaction_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTransactionService(&fakeTransactionRepo{}, &fakePayslipRepo{})

	for _, amount := range []string{"0", "-50", "abc"} {
		_, err := svc.CreateTransaction(context.Background(), uuid.NewString(), service.CreateTransactionRequest{
			Amount:          amount,
			TransactionType: model.TransactionTypeSalary,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput, "amount %q should be rejected", amount)
	}
}

func TestCreateTransaction_UnknownPayslip(t *testing.T) {
	svc, _ := newTransactionService(&fakeTransactionRepo{}, &fakePayslipRepo{})

	_, err := svc.CreateTransaction(context.Background(), uuid.NewString(), service.CreateTransactionRequest{
		PayslipID:       uuid.NewString(),
		Amount:          "100",
		TransactionType: model.TransactionTypeSalary,
	})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateTransaction_LinksExistingPayslip(t *testing.T) {
	payslip := &model.Payslip{
		ID:            uuid.New(),
		ContractID:    uuid.New(),
		EmployeeID:    uuid.New(),
		PaymentStatus: model.PaymentStatusPending,
	}

	payslips := &fakePayslipRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Payslip, error) {
			return payslip, nil
		},
	}

	svc, _ := newTransactionService(&fakeTransactionRepo{}, payslips)

	resp, err := svc.CreateTransaction(context.Background(), uuid.NewString(), service.CreateTransactionRequest{
		PayslipID:       payslip.ID.String(),
		Amount:          "2006.27",
		TransactionType: model.TransactionTypeSalary,
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp.PayslipID)
	assert.Equal(t, payslip.ID.String(), *resp.PayslipID)
}

func TestUpdateTransactionStatus(t *testing.T) {
	transaction := &model.PaymentTransaction{
		ID:        uuid.New(),
		Amount:    dec("100"),
		Currency:  "TND",
		Status:    model.PaymentStatusPending,
		Reference: "TXN-AB12CD34",
	}

	transactions := &fakeTransactionRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.PaymentTransaction, error) {
			return transaction, nil
		},
	}

	svc, audit := newTransactionService(transactions, &fakePayslipRepo{})

	resp, err := svc.UpdateStatus(context.Background(), uuid.NewString(), transaction.ID.String(),
		service.UpdateTransactionStatusRequest{Status: model.PaymentStatusPaid})

	assert.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, resp.Status)
	assert.Len(t, audit.logged, 1)
	assert.Equal(t, model.ActionUpdateTransaction, audit.logged[0].Action)
}

func TestTotalPaidByEmployee(t *testing.T) {
	transactions := &fakeTransactionRepo{
		sumPaidFn: func(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error) {
			return dec("4012.54"), nil
		},
	}

	svc, _ := newTransactionService(transactions, &fakePayslipRepo{})

	total, err := svc.TotalPaidByEmployee(context.Background(), uuid.NewString())
	assert.NoError(t, err)
	assert.Equal(t, "4012.54", total)
}

func TestTotalPaidByEmployee_Zero(t *testing.T) {
	svc, _ := newTransactionService(&fakeTransactionRepo{}, &fakePayslipRepo{})

	total, err := svc.TotalPaidByEmployee(context.Background(), uuid.NewString())
	assert.NoError(t, err)
	assert.Equal(t, "0.00", total)
}

func TestGetTransaction_NotFound(t *testing.T) {
	svc, _ := newTransactionService(&fakeTransactionRepo{}, &fakePayslipRepo{})

	_, err := svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
