package service

import (
	"context"
	"errors"
	"fmt"

	"payroll/internal/model"
	"payroll/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeSummaryResponse condenses an employee's payroll position: the active
// contract, issued payslip totals and what the ledger actually paid out.
type EmployeeSummaryResponse struct {
	EmployeeID     string            `json:"employee_id"`
	ActiveContract *ContractResponse `json:"active_contract"`
	PayslipCount   int64             `json:"payslip_count"`
	PendingCount   int64             `json:"pending_count"`
	PaidCount      int64             `json:"paid_count"`
	TotalGross     string            `json:"total_gross"`
	TotalNet       string            `json:"total_net"`
	TotalCNSS      string            `json:"total_cnss"`
	TotalIRPP      string            `json:"total_irpp"`
	TotalPaid      string            `json:"total_paid"` // settled through the ledger
	LatestPeriod   *string           `json:"latest_period"`
}

type SummaryService interface {
	EmployeeSummary(ctx context.Context, employeeID string) (EmployeeSummaryResponse, error)
}

type summaryService struct {
	summaryRepo     repository.SummaryRepository
	contractRepo    repository.ContractRepository
	payslipRepo     repository.PayslipRepository
	transactionRepo repository.TransactionRepository
}

func NewSummaryService(
	summaryRepo repository.SummaryRepository,
	contractRepo repository.ContractRepository,
	payslipRepo repository.PayslipRepository,
	transactionRepo repository.TransactionRepository,
) SummaryService {
	return &summaryService{
		summaryRepo:     summaryRepo,
		contractRepo:    contractRepo,
		payslipRepo:     payslipRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *summaryService) EmployeeSummary(ctx context.Context, employeeID string) (EmployeeSummaryResponse, error) {
	parsed, err := uuid.Parse(employeeID)
	if err != nil {
		return EmployeeSummaryResponse{}, fmt.Errorf("%w: invalid employee_id", ErrInvalidInput)
	}

	resp := EmployeeSummaryResponse{EmployeeID: employeeID}

	contract, err := s.contractRepo.FindActiveByEmployee(ctx, parsed)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return EmployeeSummaryResponse{}, fmt.Errorf("failed to load active contract: %w", err)
	}
	if contract != nil {
		c := toContractResponse(*contract)
		resp.ActiveContract = &c
	}

	totals, err := s.summaryRepo.PayslipTotalsByEmployee(ctx, parsed)
	if err != nil {
		return EmployeeSummaryResponse{}, fmt.Errorf("failed to aggregate payslips: %w", err)
	}
	resp.PayslipCount = totals.PayslipCount
	resp.TotalGross = totals.TotalGross.StringFixed(2)
	resp.TotalNet = totals.TotalNet.StringFixed(2)
	resp.TotalCNSS = totals.TotalCNSS.StringFixed(2)
	resp.TotalIRPP = totals.TotalIRPP.StringFixed(2)

	pending, err := s.summaryRepo.CountPayslipsByStatus(ctx, parsed, model.PaymentStatusPending)
	if err != nil {
		return EmployeeSummaryResponse{}, fmt.Errorf("failed to count pending payslips: %w", err)
	}
	resp.PendingCount = pending

	paid, err := s.summaryRepo.CountPayslipsByStatus(ctx, parsed, model.PaymentStatusPaid)
	if err != nil {
		return EmployeeSummaryResponse{}, fmt.Errorf("failed to count paid payslips: %w", err)
	}
	resp.PaidCount = paid

	totalPaid, err := s.transactionRepo.SumPaidByEmployee(ctx, parsed)
	if err != nil {
		return EmployeeSummaryResponse{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	resp.TotalPaid = totalPaid.StringFixed(2)

	payslips, err := s.payslipRepo.FindByEmployee(ctx, parsed)
	if err != nil {
		return EmployeeSummaryResponse{}, fmt.Errorf("failed to fetch payslips: %w", err)
	}
	if len(payslips) > 0 {
		latest := fmt.Sprintf("%04d-%02d", payslips[0].PeriodYear, payslips[0].PeriodMonth)
		resp.LatestPeriod = &latest
	}

	return resp, nil
}
