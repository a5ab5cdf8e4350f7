package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payroll/internal/model"
	"payroll/internal/repository"
	ws "payroll/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateContractRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required"`
	EmployerID   string `json:"employer_id"`
	JobOfferID   string `json:"job_offer_id"`
	SalaryBase   string `json:"salary_base" binding:"required"`
	Currency     string `json:"currency"`
	Country      string `json:"country"`
	StartDate    string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate      string `json:"end_date"`
	ContractType string `json:"contract_type" binding:"required,oneof=CDI CDD SIVP STAGE"`
}

// UpdateContractRequest edits DRAFT contract fields before submission.
type UpdateContractRequest struct {
	SalaryBase   *string `json:"salary_base"`
	Currency     *string `json:"currency"`
	Country      *string `json:"country"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	ContractType *string `json:"contract_type"`
}

type ChangeSalaryRequest struct {
	NewSalary     string `json:"new_salary" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	EffectiveDate string `json:"effective_date"` // YYYY-MM-DD, defaults to today
}

type ContractFilter struct {
	EmployeeID string
	EmployerID string
	Status     string
}

type ContractResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	EmployerID   *string `json:"employer_id"`
	JobOfferID   *string `json:"job_offer_id"`
	SalaryBase   string  `json:"salary_base"`
	Currency     string  `json:"currency"`
	Country      string  `json:"country"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date"`
	ContractType string  `json:"contract_type"`
	Status       string  `json:"status"`
	Signed       bool    `json:"signed"`
	SignedAt     *string `json:"signed_at"`
	CreatedAt    string  `json:"created_at"`
}

type SalaryHistoryResponse struct {
	ID            string `json:"id"`
	ContractID    string `json:"contract_id"`
	OldSalary     string `json:"old_salary"`
	NewSalary     string `json:"new_salary"`
	Reason        string `json:"reason"`
	EffectiveDate string `json:"effective_date"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type ContractService interface {
	// CreateContract starts the lifecycle. Employer-created contracts skip
	// straight to PENDING_SIGNATURE; everything else starts as DRAFT.
	CreateContract(ctx context.Context, userID string, userRole string, req CreateContractRequest) (ContractResponse, error)
	GetContract(ctx context.Context, id string) (ContractResponse, error)
	ActiveContract(ctx context.Context, employeeID string) (ContractResponse, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]ContractResponse, error)
	UpdateContract(ctx context.Context, userID string, id string, req UpdateContractRequest) (ContractResponse, error)
	SubmitContract(ctx context.Context, userID string, id string) (ContractResponse, error)
	SignContract(ctx context.Context, userID string, id string) (ContractResponse, error)
	TerminateContract(ctx context.Context, userID string, id string) (ContractResponse, error)
	// DeleteContract removes a DRAFT contract. Returns false without error when
	// the contract exists but is past DRAFT.
	DeleteContract(ctx context.Context, userID string, id string) (bool, error)
	ChangeSalary(ctx context.Context, userID string, id string, req ChangeSalaryRequest) (ContractResponse, error)
	GetSalaryHistory(ctx context.Context, id string) ([]SalaryHistoryResponse, error)
}

type contractService struct {
	contractRepo repository.ContractRepository
	historyRepo  repository.SalaryHistoryRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewContractService(
	contractRepo repository.ContractRepository,
	historyRepo repository.SalaryHistoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ContractService {
	return &contractService{
		contractRepo: contractRepo,
		historyRepo:  historyRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *contractService) CreateContract(ctx context.Context, userID string, userRole string, req CreateContractRequest) (ContractResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("%w: invalid employee_id", ErrInvalidInput)
	}

	salary, err := decimal.NewFromString(req.SalaryBase)
	if err != nil || salary.Sign() <= 0 {
		return ContractResponse{}, fmt.Errorf("%w: salary_base must be a positive decimal", ErrInvalidInput)
	}

	if !model.ValidContractType(req.ContractType) {
		return ContractResponse{}, fmt.Errorf("%w: unknown contract_type %q", ErrInvalidInput, req.ContractType)
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.EndDate)
		if parseErr != nil {
			return ContractResponse{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		if !parsed.After(startDate) {
			return ContractResponse{}, fmt.Errorf("%w: end_date must be after start_date", ErrInvalidInput)
		}
		endDate = &parsed
	}

	var employerID *uuid.UUID
	if req.EmployerID != "" {
		parsed, parseErr := uuid.Parse(req.EmployerID)
		if parseErr != nil {
			return ContractResponse{}, fmt.Errorf("%w: invalid employer_id", ErrInvalidInput)
		}
		employerID = &parsed
	}

	var jobOfferID *uuid.UUID
	if req.JobOfferID != "" {
		parsed, parseErr := uuid.Parse(req.JobOfferID)
		if parseErr != nil {
			return ContractResponse{}, fmt.Errorf("%w: invalid job_offer_id", ErrInvalidInput)
		}
		jobOfferID = &parsed
	}

	currency := req.Currency
	if currency == "" {
		currency = "TND"
	}
	country := req.Country
	if country == "" {
		country = "TN"
	}

	status := model.ContractStatusDraft
	if userRole == model.RoleEmployer {
		status = model.ContractStatusPendingSignature
	}

	contract := model.Contract{
		EmployeeID:   employeeID,
		EmployerID:   employerID,
		JobOfferID:   jobOfferID,
		SalaryBase:   salary,
		Currency:     currency,
		Country:      country,
		StartDate:    startDate,
		EndDate:      endDate,
		ContractType: req.ContractType,
		Status:       status,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.contractRepo.Create(txCtx, &contract); createErr != nil {
			return fmt.Errorf("failed to create contract: %w", createErr)
		}
		return s.writeAudit(txCtx, userID, model.ActionCreateContract, &contract, req)
	})
	if err != nil {
		return ContractResponse{}, err
	}

	return toContractResponse(contract), nil
}

func (s *contractService) GetContract(ctx context.Context, id string) (ContractResponse, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return ContractResponse{}, err
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) ActiveContract(ctx context.Context, employeeID string) (ContractResponse, error) {
	parsed, err := uuid.Parse(employeeID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("%w: invalid employee_id", ErrInvalidInput)
	}

	contract, err := s.contractRepo.FindActiveByEmployee(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ContractResponse{}, fmt.Errorf("%w: no active contract for employee %s", ErrNotFound, employeeID)
		}
		return ContractResponse{}, fmt.Errorf("failed to load active contract: %w", err)
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) ListContracts(ctx context.Context, filter ContractFilter) ([]ContractResponse, error) {
	var contracts []model.Contract
	var err error

	switch {
	case filter.EmployeeID != "":
		employeeID, parseErr := uuid.Parse(filter.EmployeeID)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid employee_id", ErrInvalidInput)
		}
		contracts, err = s.contractRepo.FindByEmployee(ctx, employeeID)
	case filter.EmployerID != "":
		employerID, parseErr := uuid.Parse(filter.EmployerID)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid employer_id", ErrInvalidInput)
		}
		contracts, err = s.contractRepo.FindByEmployer(ctx, employerID)
	case filter.Status != "":
		contracts, err = s.contractRepo.FindByStatus(ctx, filter.Status)
	default:
		return nil, fmt.Errorf("%w: employee_id, employer_id or status filter is required", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contracts: %w", err)
	}

	result := make([]ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		result = append(result, toContractResponse(c))
	}
	return result, nil
}

func (s *contractService) UpdateContract(ctx context.Context, userID string, id string, req UpdateContractRequest) (ContractResponse, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return ContractResponse{}, err
	}

	if contract.Status != model.ContractStatusDraft {
		return ContractResponse{}, fmt.Errorf("%w: only DRAFT contracts can be edited, current status is %s", ErrInvalidInput, contract.Status)
	}

	if req.SalaryBase != nil {
		salary, parseErr := decimal.NewFromString(*req.SalaryBase)
		if parseErr != nil || salary.Sign() <= 0 {
			return ContractResponse{}, fmt.Errorf("%w: salary_base must be a positive decimal", ErrInvalidInput)
		}
		contract.SalaryBase = salary
	}
	if req.Currency != nil {
		contract.Currency = *req.Currency
	}
	if req.Country != nil {
		contract.Country = *req.Country
	}
	if req.StartDate != nil {
		startDate, parseErr := time.Parse("2006-01-02", *req.StartDate)
		if parseErr != nil {
			return ContractResponse{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		contract.StartDate = startDate
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			contract.EndDate = nil
		} else {
			endDate, parseErr := time.Parse("2006-01-02", *req.EndDate)
			if parseErr != nil {
				return ContractResponse{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
			}
			contract.EndDate = &endDate
		}
	}
	if contract.EndDate != nil && !contract.EndDate.After(contract.StartDate) {
		return ContractResponse{}, fmt.Errorf("%w: end_date must be after start_date", ErrInvalidInput)
	}
	if req.ContractType != nil {
		if !model.ValidContractType(*req.ContractType) {
			return ContractResponse{}, fmt.Errorf("%w: unknown contract_type %q", ErrInvalidInput, *req.ContractType)
		}
		contract.ContractType = *req.ContractType
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.contractRepo.Update(txCtx, contract); updateErr != nil {
			return fmt.Errorf("failed to update contract: %w", updateErr)
		}
		return s.writeAudit(txCtx, userID, model.ActionUpdateContract, contract, req)
	})
	if err != nil {
		return ContractResponse{}, err
	}

	return toContractResponse(*contract), nil
}

func (s *contractService) SubmitContract(ctx context.Context, userID string, id string) (ContractResponse, error) {
	return s.transition(ctx, userID, id, model.ActionSubmitContract, func(contract *model.Contract) error {
		if contract.Status != model.ContractStatusDraft {
			return fmt.Errorf("%w: cannot submit contract in status %s", ErrInvalidInput, contract.Status)
		}
		contract.Status = model.ContractStatusPendingSignature
		return nil
	})
}

func (s *contractService) SignContract(ctx context.Context, userID string, id string) (ContractResponse, error) {
	resp, err := s.transition(ctx, userID, id, model.ActionSignContract, func(contract *model.Contract) error {
		if contract.Status != model.ContractStatusPendingSignature {
			return fmt.Errorf("%w: cannot sign contract in status %s", ErrInvalidInput, contract.Status)
		}
		now := time.Now()
		contract.Status = model.ContractStatusActive
		contract.Signed = true
		contract.SignedAt = &now
		return nil
	})
	if err != nil {
		return ContractResponse{}, err
	}

	s.hub.BroadcastEvent(ws.EventContractSigned, resp)
	return resp, nil
}

func (s *contractService) TerminateContract(ctx context.Context, userID string, id string) (ContractResponse, error) {
	resp, err := s.transition(ctx, userID, id, model.ActionTerminateContract, func(contract *model.Contract) error {
		if contract.Status != model.ContractStatusPendingSignature && contract.Status != model.ContractStatusActive {
			return fmt.Errorf("%w: cannot terminate contract in status %s", ErrInvalidInput, contract.Status)
		}
		contract.Status = model.ContractStatusTerminated
		if contract.EndDate == nil {
			now := time.Now()
			contract.EndDate = &now
		}
		return nil
	})
	if err != nil {
		return ContractResponse{}, err
	}

	s.hub.BroadcastEvent(ws.EventContractTerminated, resp)
	return resp, nil
}

// transition loads the contract, applies the guarded mutation, persists it and
// writes the audit entry, all inside one transaction.
func (s *contractService) transition(ctx context.Context, userID string, id string, action string, mutate func(*model.Contract) error) (ContractResponse, error) {
	contractID, err := uuid.Parse(id)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("%w: invalid contract id", ErrInvalidInput)
	}

	var contract *model.Contract
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		contract, findErr = s.contractRepo.FindByID(txCtx, contractID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load contract: %w", findErr)
		}

		if mutateErr := mutate(contract); mutateErr != nil {
			return mutateErr
		}

		if updateErr := s.contractRepo.Update(txCtx, contract); updateErr != nil {
			return fmt.Errorf("failed to update contract: %w", updateErr)
		}

		return s.writeAudit(txCtx, userID, action, contract, map[string]string{"status": contract.Status})
	})
	if err != nil {
		return ContractResponse{}, err
	}

	return toContractResponse(*contract), nil
}

func (s *contractService) DeleteContract(ctx context.Context, userID string, id string) (bool, error) {
	contractID, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Errorf("%w: invalid contract id", ErrInvalidInput)
	}

	var deleted bool
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		contract, findErr := s.contractRepo.FindByID(txCtx, contractID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load contract: %w", findErr)
		}

		rows, delErr := s.contractRepo.DeleteDraft(txCtx, contractID)
		if delErr != nil {
			return fmt.Errorf("failed to delete contract: %w", delErr)
		}
		deleted = rows > 0
		if !deleted {
			return nil
		}

		return s.writeAudit(txCtx, userID, model.ActionDeleteContract, contract, nil)
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func (s *contractService) ChangeSalary(ctx context.Context, userID string, id string, req ChangeSalaryRequest) (ContractResponse, error) {
	contractID, err := uuid.Parse(id)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("%w: invalid contract id", ErrInvalidInput)
	}

	newSalary, err := decimal.NewFromString(req.NewSalary)
	if err != nil || newSalary.Sign() <= 0 {
		return ContractResponse{}, fmt.Errorf("%w: new_salary must be a positive decimal", ErrInvalidInput)
	}

	effectiveDate := time.Now()
	if req.EffectiveDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.EffectiveDate)
		if parseErr != nil {
			return ContractResponse{}, fmt.Errorf("%w: effective_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		effectiveDate = parsed
	}

	var contract *model.Contract
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		contract, findErr = s.contractRepo.FindByID(txCtx, contractID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load contract: %w", findErr)
		}

		if contract.Status != model.ContractStatusActive {
			return fmt.Errorf("%w: salary can only change on an ACTIVE contract, current status is %s", ErrInvalidInput, contract.Status)
		}

		history := model.SalaryHistory{
			ContractID:    contract.ID,
			OldSalary:     contract.SalaryBase,
			NewSalary:     newSalary,
			Reason:        req.Reason,
			EffectiveDate: effectiveDate,
		}
		if appendErr := s.historyRepo.Append(txCtx, &history); appendErr != nil {
			return fmt.Errorf("failed to record salary history: %w", appendErr)
		}

		contract.SalaryBase = newSalary
		if updateErr := s.contractRepo.Update(txCtx, contract); updateErr != nil {
			return fmt.Errorf("failed to update contract: %w", updateErr)
		}

		return s.writeAudit(txCtx, userID, model.ActionChangeSalary, contract, req)
	})
	if err != nil {
		return ContractResponse{}, err
	}

	return toContractResponse(*contract), nil
}

func (s *contractService) GetSalaryHistory(ctx context.Context, id string) ([]SalaryHistoryResponse, error) {
	contractID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid contract id", ErrInvalidInput)
	}

	entries, err := s.historyRepo.FindByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch salary history: %w", err)
	}

	result := make([]SalaryHistoryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, SalaryHistoryResponse{
			ID:            e.ID.String(),
			ContractID:    e.ContractID.String(),
			OldSalary:     e.OldSalary.StringFixed(2),
			NewSalary:     e.NewSalary.StringFixed(2),
			Reason:        e.Reason,
			EffectiveDate: e.EffectiveDate.Format("2006-01-02"),
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// --- Helpers ---

func (s *contractService) findContract(ctx context.Context, id string) (*model.Contract, error) {
	contractID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid contract id", ErrInvalidInput)
	}

	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	return contract, nil
}

func (s *contractService) writeAudit(ctx context.Context, userID string, action string, contract *model.Contract, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	audit := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   contract.ID.String(),
		EntityName: contract.ContractType + " contract",
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// --- Mapping ---

func toContractResponse(c model.Contract) ContractResponse {
	resp := ContractResponse{
		ID:           c.ID.String(),
		EmployeeID:   c.EmployeeID.String(),
		SalaryBase:   c.SalaryBase.StringFixed(2),
		Currency:     c.Currency,
		Country:      c.Country,
		StartDate:    c.StartDate.Format("2006-01-02"),
		ContractType: c.ContractType,
		Status:       c.Status,
		Signed:       c.Signed,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}

	if c.Employee != nil {
		resp.EmployeeName = c.Employee.FullName
	}
	if c.EmployerID != nil {
		v := c.EmployerID.String()
		resp.EmployerID = &v
	}
	if c.JobOfferID != nil {
		v := c.JobOfferID.String()
		resp.JobOfferID = &v
	}
	if c.EndDate != nil {
		v := c.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	if c.SignedAt != nil {
		v := c.SignedAt.Format(time.RFC3339)
		resp.SignedAt = &v
	}

	return resp
}
