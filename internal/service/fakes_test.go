package service_test

import (
	"context"
	"time"

	"payroll/internal/model"
	"payroll/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeTxManager runs the callback directly, without a database.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeContractRepo struct {
	createFn               func(ctx context.Context, contract *model.Contract) error
	findByIDFn             func(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	findByEmployeeFn       func(ctx context.Context, employeeID uuid.UUID) ([]model.Contract, error)
	findByEmployerFn       func(ctx context.Context, employerID uuid.UUID) ([]model.Contract, error)
	findActiveByEmployeeFn func(ctx context.Context, employeeID uuid.UUID) (*model.Contract, error)
	findByStatusFn         func(ctx context.Context, status string) ([]model.Contract, error)
	updateFn               func(ctx context.Context, contract *model.Contract) error
	deleteDraftFn          func(ctx context.Context, id uuid.UUID) (int64, error)
}

func (f *fakeContractRepo) Create(ctx context.Context, contract *model.Contract) error {
	if f.createFn != nil {
		return f.createFn(ctx, contract)
	}
	contract.ID = uuid.New()
	return nil
}

func (f *fakeContractRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContractRepo) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Contract, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeContractRepo) FindByEmployer(ctx context.Context, employerID uuid.UUID) ([]model.Contract, error) {
	if f.findByEmployerFn != nil {
		return f.findByEmployerFn(ctx, employerID)
	}
	return nil, nil
}

func (f *fakeContractRepo) FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (*model.Contract, error) {
	if f.findActiveByEmployeeFn != nil {
		return f.findActiveByEmployeeFn(ctx, employeeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContractRepo) FindByStatus(ctx context.Context, status string) ([]model.Contract, error) {
	if f.findByStatusFn != nil {
		return f.findByStatusFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeContractRepo) Update(ctx context.Context, contract *model.Contract) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, contract)
	}
	return nil
}

func (f *fakeContractRepo) DeleteDraft(ctx context.Context, id uuid.UUID) (int64, error) {
	if f.deleteDraftFn != nil {
		return f.deleteDraftFn(ctx, id)
	}
	return 0, nil
}

type fakePayslipRepo struct {
	createFn                  func(ctx context.Context, payslip *model.Payslip) error
	findByIDFn                func(ctx context.Context, id uuid.UUID) (*model.Payslip, error)
	findByContractAndPeriodFn func(ctx context.Context, contractID uuid.UUID, month, year int) (*model.Payslip, error)
	findByContractFn          func(ctx context.Context, contractID uuid.UUID) ([]model.Payslip, error)
	findByEmployeeFn          func(ctx context.Context, employeeID uuid.UUID) ([]model.Payslip, error)
	updateFn                  func(ctx context.Context, payslip *model.Payslip) error
	deletePendingFn           func(ctx context.Context, id uuid.UUID) (int64, error)
}

func (f *fakePayslipRepo) Create(ctx context.Context, payslip *model.Payslip) error {
	if f.createFn != nil {
		return f.createFn(ctx, payslip)
	}
	payslip.ID = uuid.New()
	return nil
}

func (f *fakePayslipRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payslip, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayslipRepo) FindByContractAndPeriod(ctx context.Context, contractID uuid.UUID, month, year int) (*model.Payslip, error) {
	if f.findByContractAndPeriodFn != nil {
		return f.findByContractAndPeriodFn(ctx, contractID, month, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayslipRepo) FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.Payslip, error) {
	if f.findByContractFn != nil {
		return f.findByContractFn(ctx, contractID)
	}
	return nil, nil
}

func (f *fakePayslipRepo) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Payslip, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakePayslipRepo) Update(ctx context.Context, payslip *model.Payslip) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, payslip)
	}
	return nil
}

func (f *fakePayslipRepo) DeletePending(ctx context.Context, id uuid.UUID) (int64, error) {
	if f.deletePendingFn != nil {
		return f.deletePendingFn(ctx, id)
	}
	return 0, nil
}

type fakeBracketRepo struct {
	createFn     func(ctx context.Context, bracket *model.TaxBracket) error
	updateFn     func(ctx context.Context, bracket *model.TaxBracket) error
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*model.TaxBracket, error)
	listFn       func(ctx context.Context, country string, page, limit int) ([]model.TaxBracket, int64, error)
	findActiveFn func(ctx context.Context, country, taxType string) ([]model.TaxBracket, error)
}

func (f *fakeBracketRepo) Create(ctx context.Context, bracket *model.TaxBracket) error {
	if f.createFn != nil {
		return f.createFn(ctx, bracket)
	}
	bracket.ID = uuid.New()
	return nil
}

func (f *fakeBracketRepo) Update(ctx context.Context, bracket *model.TaxBracket) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, bracket)
	}
	return nil
}

func (f *fakeBracketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeBracketRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxBracket, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBracketRepo) List(ctx context.Context, country string, page, limit int) ([]model.TaxBracket, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, country, page, limit)
	}
	return nil, 0, nil
}

func (f *fakeBracketRepo) FindActive(ctx context.Context, country, taxType string) ([]model.TaxBracket, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx, country, taxType)
	}
	return nil, nil
}

type fakeTransactionRepo struct {
	createFn           func(ctx context.Context, tx *model.PaymentTransaction) error
	findByIDFn         func(ctx context.Context, id uuid.UUID) (*model.PaymentTransaction, error)
	countByReferenceFn func(ctx context.Context, reference string) (int64, error)
	findByPayslipFn    func(ctx context.Context, payslipID uuid.UUID) ([]model.PaymentTransaction, error)
	findByEmployeeFn   func(ctx context.Context, employeeID uuid.UUID) ([]model.PaymentTransaction, error)
	updateFn           func(ctx context.Context, tx *model.PaymentTransaction) error
	sumPaidFn          func(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error)
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *model.PaymentTransaction) error {
	if f.createFn != nil {
		return f.createFn(ctx, tx)
	}
	tx.ID = uuid.New()
	return nil
}

func (f *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTransaction, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTransactionRepo) CountByReference(ctx context.Context, reference string) (int64, error) {
	if f.countByReferenceFn != nil {
		return f.countByReferenceFn(ctx, reference)
	}
	return 0, nil
}

func (f *fakeTransactionRepo) FindByPayslip(ctx context.Context, payslipID uuid.UUID) ([]model.PaymentTransaction, error) {
	if f.findByPayslipFn != nil {
		return f.findByPayslipFn(ctx, payslipID)
	}
	return nil, nil
}

func (f *fakeTransactionRepo) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.PaymentTransaction, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeTransactionRepo) Update(ctx context.Context, tx *model.PaymentTransaction) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, tx)
	}
	return nil
}

func (f *fakeTransactionRepo) SumPaidByEmployee(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error) {
	if f.sumPaidFn != nil {
		return f.sumPaidFn(ctx, employeeID)
	}
	return decimal.Zero, nil
}

type fakeHistoryRepo struct {
	appendFn         func(ctx context.Context, entry *model.SalaryHistory) error
	findByContractFn func(ctx context.Context, contractID uuid.UUID) ([]model.SalaryHistory, error)
}

func (f *fakeHistoryRepo) Append(ctx context.Context, entry *model.SalaryHistory) error {
	if f.appendFn != nil {
		return f.appendFn(ctx, entry)
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	return nil
}

func (f *fakeHistoryRepo) FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.SalaryHistory, error) {
	if f.findByContractFn != nil {
		return f.findByContractFn(ctx, contractID)
	}
	return nil, nil
}

type fakeAuditRepo struct {
	logged []model.AuditLog
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	f.logged = append(f.logged, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return f.logged, int64(len(f.logged)), nil
}

var _ repository.ContractRepository = (*fakeContractRepo)(nil)
var _ repository.PayslipRepository = (*fakePayslipRepo)(nil)
var _ repository.TaxBracketRepository = (*fakeBracketRepo)(nil)
var _ repository.TransactionRepository = (*fakeTransactionRepo)(nil)
var _ repository.SalaryHistoryRepository = (*fakeHistoryRepo)(nil)
var _ repository.AuditRepository = (*fakeAuditRepo)(nil)
var _ repository.TransactionManager = fakeTxManager{}
