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
	ws "payroll/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type GeneratePayslipRequest struct {
	ContractID  string `json:"contract_id" binding:"required"`
	PeriodMonth int    `json:"period_month" binding:"required"`
	PeriodYear  int    `json:"period_year" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PAID FAILED"`
}

type PreviewRequest struct {
	GrossSalary string `json:"gross_salary" binding:"required"`
	Country     string `json:"country"`
}

type PayslipResponse struct {
	ID              string  `json:"id"`
	ContractID      string  `json:"contract_id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	PeriodMonth     int     `json:"period_month"`
	PeriodYear      int     `json:"period_year"`
	GrossSalary     string  `json:"gross_salary"`
	NetSalary       string  `json:"net_salary"`
	CNSSEmployee    string  `json:"cnss_employee"`
	CNSSEmployer    string  `json:"cnss_employer"`
	IRPP            string  `json:"irpp"`
	OtherDeductions string  `json:"other_deductions"`
	Bonuses         string  `json:"bonuses"`
	Currency        string  `json:"currency"`
	PaymentStatus   string  `json:"payment_status"`
	PaymentDate     *string `json:"payment_date"`
	CreatedAt       string  `json:"created_at"`

	// TaxConfigMissing is true when no active IRPP brackets existed for the
	// contract's country, so IRPP was computed as zero.
	TaxConfigMissing bool `json:"tax_config_missing,omitempty"`
}

// PreviewResponse is the non-persisting salary breakdown.
type PreviewResponse struct {
	GrossSalary      string `json:"gross_salary"`
	CNSSEmployee     string `json:"cnss_employee"`
	CNSSEmployer     string `json:"cnss_employer"`
	AnnualIRPP       string `json:"annual_irpp"`
	MonthlyIRPP      string `json:"monthly_irpp"`
	NetSalary        string `json:"net_salary"`
	DeductionRate    string `json:"deduction_rate"` // (gross-net)/gross, 4dp
	Country          string `json:"country"`
	TaxConfigMissing bool   `json:"tax_config_missing,omitempty"`
}

// --- Interface ---

type PayslipService interface {
	// Generate computes and persists the payslip for a contract period.
	// Generation is idempotent per (contract, month, year): a second call
	// returns the existing payslip untouched.
	Generate(ctx context.Context, userID string, req GeneratePayslipRequest) (PayslipResponse, error)
	GetByID(ctx context.Context, id string) (PayslipResponse, error)
	ListByContract(ctx context.Context, contractID string) ([]PayslipResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]PayslipResponse, error)
	UpdatePaymentStatus(ctx context.Context, userID string, id string, req UpdatePaymentStatusRequest) (PayslipResponse, error)
	// Delete removes a payslip while payment is still PENDING. Returns false
	// without error when the payslip exists but payment already settled.
	Delete(ctx context.Context, userID string, id string) (bool, error)
	Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
}

type payslipService struct {
	payslipRepo  repository.PayslipRepository
	contractRepo repository.ContractRepository
	bracketRepo  repository.TaxBracketRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewPayslipService(
	payslipRepo repository.PayslipRepository,
	contractRepo repository.ContractRepository,
	bracketRepo repository.TaxBracketRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) PayslipService {
	return &payslipService{
		payslipRepo:  payslipRepo,
		contractRepo: contractRepo,
		bracketRepo:  bracketRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *payslipService) Generate(ctx context.Context, userID string, req GeneratePayslipRequest) (PayslipResponse, error) {
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return PayslipResponse{}, fmt.Errorf("%w: invalid contract_id", ErrInvalidInput)
	}
	if req.PeriodMonth < 1 || req.PeriodMonth > 12 {
		return PayslipResponse{}, fmt.Errorf("%w: period_month must be 1-12", ErrInvalidInput)
	}
	if req.PeriodYear < 2000 || req.PeriodYear > 2100 {
		return PayslipResponse{}, fmt.Errorf("%w: period_year out of range", ErrInvalidInput)
	}

	var payslip *model.Payslip
	var configMissing bool
	var existing bool

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		contract, findErr := s.contractRepo.FindByID(txCtx, contractID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, req.ContractID)
			}
			return fmt.Errorf("failed to load contract: %w", findErr)
		}

		if contract.Status != model.ContractStatusActive {
			return fmt.Errorf("%w: payslips require an ACTIVE contract, current status is %s", ErrInvalidInput, contract.Status)
		}
		if contract.SalaryBase.Sign() <= 0 {
			return fmt.Errorf("%w: contract salary must be positive", ErrInvalidInput)
		}

		// Idempotency check inside the tx; the composite unique index on
		// (contract_id, period_month, period_year) backstops races.
		found, lookupErr := s.payslipRepo.FindByContractAndPeriod(txCtx, contractID, req.PeriodMonth, req.PeriodYear)
		if lookupErr == nil {
			payslip = found
			existing = true
			return nil
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing payslip: %w", lookupErr)
		}

		breakdown, computeErr := s.compute(txCtx, contract.SalaryBase, contract.Country)
		if computeErr != nil {
			return computeErr
		}
		configMissing = breakdown.configMissing

		payslip = &model.Payslip{
			ContractID:      contract.ID,
			EmployeeID:      contract.EmployeeID,
			PeriodMonth:     req.PeriodMonth,
			PeriodYear:      req.PeriodYear,
			GrossSalary:     breakdown.gross,
			NetSalary:       breakdown.net,
			CNSSEmployee:    breakdown.cnssEmployee,
			CNSSEmployer:    breakdown.cnssEmployer,
			IRPP:            breakdown.monthlyIRPP,
			OtherDeductions: decimal.Zero,
			Bonuses:         decimal.Zero,
			Currency:        contract.Currency,
			PaymentStatus:   model.PaymentStatusPending,
		}

		if createErr := s.payslipRepo.Create(txCtx, payslip); createErr != nil {
			return fmt.Errorf("%w: payslip for this period already exists", ErrConflict)
		}

		return s.writeAudit(txCtx, userID, model.ActionGeneratePayslip, payslip,
			map[string]interface{}{"period_month": req.PeriodMonth, "period_year": req.PeriodYear})
	})
	if err != nil {
		return PayslipResponse{}, err
	}

	resp := toPayslipResponse(*payslip)
	resp.TaxConfigMissing = configMissing

	if !existing {
		s.hub.BroadcastEvent(ws.EventPayslipGenerated, resp)
	}
	return resp, nil
}

func (s *payslipService) GetByID(ctx context.Context, id string) (PayslipResponse, error) {
	payslip, err := s.findPayslip(ctx, id)
	if err != nil {
		return PayslipResponse{}, err
	}
	return toPayslipResponse(*payslip), nil
}

func (s *payslipService) ListByContract(ctx context.Context, contractID string) ([]PayslipResponse, error) {
	parsed, err := uuid.Parse(contractID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid contract_id", ErrInvalidInput)
	}

	payslips, err := s.payslipRepo.FindByContract(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payslips: %w", err)
	}
	return toPayslipResponses(payslips), nil
}

func (s *payslipService) ListByEmployee(ctx context.Context, employeeID string) ([]PayslipResponse, error) {
	parsed, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid employee_id", ErrInvalidInput)
	}

	payslips, err := s.payslipRepo.FindByEmployee(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payslips: %w", err)
	}
	return toPayslipResponses(payslips), nil
}

func (s *payslipService) UpdatePaymentStatus(ctx context.Context, userID string, id string, req UpdatePaymentStatusRequest) (PayslipResponse, error) {
	payslipID, err := uuid.Parse(id)
	if err != nil {
		return PayslipResponse{}, fmt.Errorf("%w: invalid payslip id", ErrInvalidInput)
	}

	var payslip *model.Payslip
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		payslip, findErr = s.payslipRepo.FindByID(txCtx, payslipID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payslip %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load payslip: %w", findErr)
		}

		if !validPaymentTransition(payslip.PaymentStatus, req.Status) {
			return fmt.Errorf("%w: cannot move payment status %s -> %s", ErrInvalidInput, payslip.PaymentStatus, req.Status)
		}

		payslip.PaymentStatus = req.Status
		if req.Status == model.PaymentStatusPaid {
			now := time.Now()
			payslip.PaymentDate = &now
		} else {
			payslip.PaymentDate = nil
		}

		if updateErr := s.payslipRepo.Update(txCtx, payslip); updateErr != nil {
			return fmt.Errorf("failed to update payslip: %w", updateErr)
		}

		return s.writeAudit(txCtx, userID, model.ActionUpdatePayslipStatus, payslip,
			map[string]string{"status": req.Status})
	})
	if err != nil {
		return PayslipResponse{}, err
	}

	resp := toPayslipResponse(*payslip)
	if payslip.PaymentStatus == model.PaymentStatusPaid {
		s.hub.BroadcastEvent(ws.EventPayslipPaid, resp)
	}
	return resp, nil
}

func (s *payslipService) Delete(ctx context.Context, userID string, id string) (bool, error) {
	payslipID, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Errorf("%w: invalid payslip id", ErrInvalidInput)
	}

	var deleted bool
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payslip, findErr := s.payslipRepo.FindByID(txCtx, payslipID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payslip %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load payslip: %w", findErr)
		}

		rows, delErr := s.payslipRepo.DeletePending(txCtx, payslipID)
		if delErr != nil {
			return fmt.Errorf("failed to delete payslip: %w", delErr)
		}
		deleted = rows > 0
		if !deleted {
			return nil
		}

		return s.writeAudit(txCtx, userID, model.ActionDeletePayslip, payslip, nil)
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func (s *payslipService) Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error) {
	gross, err := decimal.NewFromString(req.GrossSalary)
	if err != nil || gross.Sign() <= 0 {
		return PreviewResponse{}, fmt.Errorf("%w: gross_salary must be a positive decimal", ErrInvalidInput)
	}

	country := req.Country
	if country == "" {
		country = "TN"
	}

	breakdown, err := s.compute(ctx, gross, country)
	if err != nil {
		return PreviewResponse{}, err
	}

	deductionRate := decimal.Zero
	if gross.Sign() > 0 {
		deductionRate = gross.Sub(breakdown.net).Div(gross).Round(4)
	}

	return PreviewResponse{
		GrossSalary:      breakdown.gross.StringFixed(2),
		CNSSEmployee:     breakdown.cnssEmployee.StringFixed(2),
		CNSSEmployer:     breakdown.cnssEmployer.StringFixed(2),
		AnnualIRPP:       breakdown.annualIRPP.StringFixed(2),
		MonthlyIRPP:      breakdown.monthlyIRPP.StringFixed(2),
		NetSalary:        breakdown.net.StringFixed(2),
		DeductionRate:    deductionRate.StringFixed(4),
		Country:          country,
		TaxConfigMissing: breakdown.configMissing,
	}, nil
}

// --- Computation ---

type salaryBreakdown struct {
	gross         decimal.Decimal
	cnssEmployee  decimal.Decimal
	cnssEmployer  decimal.Decimal
	annualIRPP    decimal.Decimal
	monthlyIRPP   decimal.Decimal
	net           decimal.Decimal
	configMissing bool
}

var twelve = decimal.NewFromInt(12)

// compute runs the full monthly salary breakdown: CNSS shares on the monthly
// gross, IRPP on the annualized gross through the progressive engine, then the
// monthly IRPP share and the net. Missing bracket configuration yields zero
// IRPP with the configMissing flag set instead of failing the run.
func (s *payslipService) compute(ctx context.Context, gross decimal.Decimal, country string) (salaryBreakdown, error) {
	cnssEmployee := gross.Mul(tax.CNSSEmployeeRate).Round(2)
	cnssEmployer := gross.Mul(tax.CNSSEmployerRate).Round(2)

	brackets, err := s.activeBrackets(ctx, country)
	if err != nil {
		return salaryBreakdown{}, err
	}

	annualIRPP := decimal.Zero
	configMissing := len(brackets) == 0
	if !configMissing {
		annualIRPP = tax.Calculate(gross.Mul(twelve), brackets)
	}
	monthlyIRPP := annualIRPP.Div(twelve).Round(2)

	net := gross.Sub(cnssEmployee).Sub(monthlyIRPP).Round(2)

	return salaryBreakdown{
		gross:         gross,
		cnssEmployee:  cnssEmployee,
		cnssEmployer:  cnssEmployer,
		annualIRPP:    annualIRPP,
		monthlyIRPP:   monthlyIRPP,
		net:           net,
		configMissing: configMissing,
	}, nil
}

// activeBrackets loads the active IRPP rows for a country and converts them to
// engine brackets.
func (s *payslipService) activeBrackets(ctx context.Context, country string) ([]tax.Bracket, error) {
	rows, err := s.bracketRepo.FindActive(ctx, country, model.TaxTypeIRPP)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax brackets: %w", err)
	}

	brackets := make([]tax.Bracket, 0, len(rows))
	for _, row := range rows {
		brackets = append(brackets, tax.Bracket{
			Lower: row.MinBracket,
			Upper: row.MaxBracket,
			Rate:  row.Rate,
		})
	}
	return brackets, nil
}

// --- Helpers ---

func validPaymentTransition(from, to string) bool {
	switch {
	case from == model.PaymentStatusPending && to == model.PaymentStatusPaid:
		return true
	case from == model.PaymentStatusPending && to == model.PaymentStatusFailed:
		return true
	case from == model.PaymentStatusFailed && to == model.PaymentStatusPending:
		return true
	}
	return false
}

func (s *payslipService) findPayslip(ctx context.Context, id string) (*model.Payslip, error) {
	payslipID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payslip id", ErrInvalidInput)
	}

	payslip, err := s.payslipRepo.FindByID(ctx, payslipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payslip %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load payslip: %w", err)
	}
	return payslip, nil
}

func (s *payslipService) writeAudit(ctx context.Context, userID string, action string, payslip *model.Payslip, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	audit := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   payslip.ID.String(),
		EntityName: fmt.Sprintf("payslip %02d/%d", payslip.PeriodMonth, payslip.PeriodYear),
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// --- Mapping ---

func toPayslipResponse(p model.Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:              p.ID.String(),
		ContractID:      p.ContractID.String(),
		EmployeeID:      p.EmployeeID.String(),
		PeriodMonth:     p.PeriodMonth,
		PeriodYear:      p.PeriodYear,
		GrossSalary:     p.GrossSalary.StringFixed(2),
		NetSalary:       p.NetSalary.StringFixed(2),
		CNSSEmployee:    p.CNSSEmployee.StringFixed(2),
		CNSSEmployer:    p.CNSSEmployer.StringFixed(2),
		IRPP:            p.IRPP.StringFixed(2),
		OtherDeductions: p.OtherDeductions.StringFixed(2),
		Bonuses:         p.Bonuses.StringFixed(2),
		Currency:        p.Currency,
		PaymentStatus:   p.PaymentStatus,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}

	if p.Employee != nil {
		resp.EmployeeName = p.Employee.FullName
	}
	if p.PaymentDate != nil {
		v := p.PaymentDate.Format(time.RFC3339)
		resp.PaymentDate = &v
	}

	return resp
}

func toPayslipResponses(payslips []model.Payslip) []PayslipResponse {
	result := make([]PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		result = append(result, toPayslipResponse(p))
	}
	return result
}
