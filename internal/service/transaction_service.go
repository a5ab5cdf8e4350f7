package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"payroll/internal/model"
	"payroll/internal/repository"
	ws "payroll/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// referenceRetries bounds reference regeneration on collision.
const referenceRetries = 5

// --- DTOs ---

type CreateTransactionRequest struct {
	PayslipID       string `json:"payslip_id"`
	FromAccountID   string `json:"from_account_id"`
	ToAccountID     string `json:"to_account_id"`
	Amount          string `json:"amount" binding:"required"`
	Currency        string `json:"currency"`
	TransactionType string `json:"transaction_type" binding:"required,oneof=SALARY_PAYMENT BONUS_PAYMENT REIMBURSEMENT"`
	Notes           string `json:"notes"`
}

type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PAID FAILED"`
}

type TransactionResponse struct {
	ID              string  `json:"id"`
	PayslipID       *string `json:"payslip_id"`
	FromAccountID   *string `json:"from_account_id"`
	ToAccountID     *string `json:"to_account_id"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	TransactionType string  `json:"transaction_type"`
	Status          string  `json:"status"`
	Reference       string  `json:"reference"`
	TransactionDate string  `json:"transaction_date"`
	Notes           string  `json:"notes"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type TransactionService interface {
	CreateTransaction(ctx context.Context, userID string, req CreateTransactionRequest) (TransactionResponse, error)
	GetByID(ctx context.Context, id string) (TransactionResponse, error)
	ListByPayslip(ctx context.Context, payslipID string) ([]TransactionResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]TransactionResponse, error)
	UpdateStatus(ctx context.Context, userID string, id string, req UpdateTransactionStatusRequest) (TransactionResponse, error)
	TotalPaidByEmployee(ctx context.Context, employeeID string) (string, error)
}

type transactionService struct {
	transactionRepo repository.TransactionRepository
	payslipRepo     repository.PayslipRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	hub             *ws.Hub
}

func NewTransactionService(
	transactionRepo repository.TransactionRepository,
	payslipRepo repository.PayslipRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		payslipRepo:     payslipRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		hub:             hub,
	}
}

// --- Implementation ---

func (s *transactionService) CreateTransaction(ctx context.Context, userID string, req CreateTransactionRequest) (TransactionResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		return TransactionResponse{}, fmt.Errorf("%w: amount must be a positive decimal", ErrInvalidInput)
	}

	var payslipID *uuid.UUID
	if req.PayslipID != "" {
		parsed, parseErr := uuid.Parse(req.PayslipID)
		if parseErr != nil {
			return TransactionResponse{}, fmt.Errorf("%w: invalid payslip_id", ErrInvalidInput)
		}
		payslipID = &parsed
	}

	fromAccountID, err := parseOptionalUUID(req.FromAccountID, "from_account_id")
	if err != nil {
		return TransactionResponse{}, err
	}
	toAccountID, err := parseOptionalUUID(req.ToAccountID, "to_account_id")
	if err != nil {
		return TransactionResponse{}, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "TND"
	}

	var transaction *model.PaymentTransaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if payslipID != nil {
			if _, findErr := s.payslipRepo.FindByID(txCtx, *payslipID); findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: payslip %s", ErrNotFound, req.PayslipID)
				}
				return fmt.Errorf("failed to load payslip: %w", findErr)
			}
		}

		reference, refErr := s.generateReference(txCtx)
		if refErr != nil {
			return refErr
		}

		transaction = &model.PaymentTransaction{
			PayslipID:       payslipID,
			FromAccountID:   fromAccountID,
			ToAccountID:     toAccountID,
			Amount:          amount,
			Currency:        currency,
			TransactionType: req.TransactionType,
			Status:          model.PaymentStatusPending,
			Reference:       reference,
			TransactionDate: time.Now(),
			Notes:           req.Notes,
		}

		if createErr := s.transactionRepo.Create(txCtx, transaction); createErr != nil {
			return fmt.Errorf("failed to create transaction: %w", createErr)
		}

		return s.writeAudit(txCtx, userID, model.ActionCreateTransaction, transaction, req)
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	resp := toTransactionResponse(*transaction)
	s.hub.BroadcastEvent(ws.EventTransactionCreated, resp)
	return resp, nil
}

func (s *transactionService) GetByID(ctx context.Context, id string) (TransactionResponse, error) {
	transactionID, err := uuid.Parse(id)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("%w: invalid transaction id", ErrInvalidInput)
	}

	transaction, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransactionResponse{}, fmt.Errorf("%w: transaction %s", ErrNotFound, id)
		}
		return TransactionResponse{}, fmt.Errorf("failed to load transaction: %w", err)
	}
	return toTransactionResponse(*transaction), nil
}

func (s *transactionService) ListByPayslip(ctx context.Context, payslipID string) ([]TransactionResponse, error) {
	parsed, err := uuid.Parse(payslipID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payslip_id", ErrInvalidInput)
	}

	transactions, err := s.transactionRepo.FindByPayslip(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return toTransactionResponses(transactions), nil
}

func (s *transactionService) ListByEmployee(ctx context.Context, employeeID string) ([]TransactionResponse, error) {
	parsed, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid employee_id", ErrInvalidInput)
	}

	transactions, err := s.transactionRepo.FindByEmployee(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return toTransactionResponses(transactions), nil
}

func (s *transactionService) UpdateStatus(ctx context.Context, userID string, id string, req UpdateTransactionStatusRequest) (TransactionResponse, error) {
	transactionID, err := uuid.Parse(id)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("%w: invalid transaction id", ErrInvalidInput)
	}

	var transaction *model.PaymentTransaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		transaction, findErr = s.transactionRepo.FindByID(txCtx, transactionID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: transaction %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load transaction: %w", findErr)
		}

		transaction.Status = req.Status
		if updateErr := s.transactionRepo.Update(txCtx, transaction); updateErr != nil {
			return fmt.Errorf("failed to update transaction: %w", updateErr)
		}

		return s.writeAudit(txCtx, userID, model.ActionUpdateTransaction, transaction,
			map[string]string{"status": req.Status})
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	resp := toTransactionResponse(*transaction)
	s.hub.BroadcastEvent(ws.EventTransactionUpdated, resp)
	return resp, nil
}

func (s *transactionService) TotalPaidByEmployee(ctx context.Context, employeeID string) (string, error) {
	parsed, err := uuid.Parse(employeeID)
	if err != nil {
		return "", fmt.Errorf("%w: invalid employee_id", ErrInvalidInput)
	}

	total, err := s.transactionRepo.SumPaidByEmployee(ctx, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total.StringFixed(2), nil
}

// --- Helpers ---

// generateReference derives a TXN-XXXXXXXX reference from a fresh UUID and
// regenerates on collision, up to referenceRetries attempts.
func (s *transactionService) generateReference(ctx context.Context) (string, error) {
	for i := 0; i < referenceRetries; i++ {
		reference := newReference()
		count, err := s.transactionRepo.CountByReference(ctx, reference)
		if err != nil {
			return "", fmt.Errorf("failed to check reference: %w", err)
		}
		if count == 0 {
			return reference, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique transaction reference", ErrConflict)
}

func newReference() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TXN-" + strings.ToUpper(raw[:8])
}

func parseOptionalUUID(value, field string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", ErrInvalidInput, field)
	}
	return &parsed, nil
}

func (s *transactionService) writeAudit(ctx context.Context, userID string, action string, transaction *model.PaymentTransaction, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	audit := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   transaction.ID.String(),
		EntityName: transaction.Reference,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// --- Mapping ---

func toTransactionResponse(t model.PaymentTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID.String(),
		Amount:          t.Amount.StringFixed(2),
		Currency:        t.Currency,
		TransactionType: t.TransactionType,
		Status:          t.Status,
		Reference:       t.Reference,
		TransactionDate: t.TransactionDate.Format(time.RFC3339),
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}

	if t.PayslipID != nil {
		v := t.PayslipID.String()
		resp.PayslipID = &v
	}
	if t.FromAccountID != nil {
		v := t.FromAccountID.String()
		resp.FromAccountID = &v
	}
	if t.ToAccountID != nil {
		v := t.ToAccountID.String()
		resp.ToAccountID = &v
	}

	return resp
}

func toTransactionResponses(transactions []model.PaymentTransaction) []TransactionResponse {
	result := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		result = append(result, toTransactionResponse(t))
	}
	return result
}
