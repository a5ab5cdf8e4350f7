package handler

import (
	"net/http"

	"payroll/internal/middleware"
	"payroll/internal/service"
	"payroll/pkg/response"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	transactionService service.TransactionService
}

func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions")
	{
		transactions.POST("", middleware.RequireRole("admin", "employer"), h.CreateTransaction)
		transactions.GET("", middleware.RequireRole("admin", "employer", "employee"), h.List)
		transactions.GET("/:id", middleware.RequireRole("admin", "employer", "employee"), h.GetByID)
		transactions.PATCH("/:id/status", middleware.RequireRole("admin", "employer"), h.UpdateStatus)
		transactions.GET("/total-paid", middleware.RequireRole("admin", "employer", "employee"), h.TotalPaid)
	}
}

// CreateTransaction handles POST /transactions
// @Summary      Record a payment transaction
// @Description  Creates a ledger entry with a generated TXN-XXXXXXXX reference, optionally linked to a payslip
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTransactionRequest  true  "Transaction Payload"
// @Success      201      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req service.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, transaction))
}

// List handles GET /transactions filtered by payslip_id or employee_id
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        payslip_id   query     string  false  "Payslip UUID"
// @Param        employee_id  query     string  false  "Employee UUID"
// @Success      200          {object}  response.Response{data=[]service.TransactionResponse}
// @Failure      400          {object}  response.Response
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	payslipID := c.Query("payslip_id")
	employeeID := c.Query("employee_id")

	var transactions []service.TransactionResponse
	var err error
	switch {
	case payslipID != "":
		transactions, err = h.transactionService.ListByPayslip(c.Request.Context(), payslipID)
	case employeeID != "":
		transactions, err = h.transactionService.ListByEmployee(c.Request.Context(), employeeID)
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payslip_id or employee_id query parameter is required"))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transactions))
}

// GetByID handles GET /transactions/:id
// @Summary      Get transaction by ID
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction UUID"
// @Success      200  {object}  response.Response{data=service.TransactionResponse}
// @Failure      404  {object}  response.Response
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	transaction, err := h.transactionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transaction))
}

// UpdateStatus handles PATCH /transactions/:id/status
// @Summary      Update transaction status
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                  true  "Transaction UUID"
// @Param        payload  body      service.UpdateTransactionStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Router       /transactions/{id}/status [patch]
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transaction))
}

// TotalPaid handles GET /transactions/total-paid?employee_id=...
// @Summary      Total paid to an employee
// @Description  Sums PAID transaction amounts joined through the employee's payslips
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id  query     string  true  "Employee UUID"
// @Success      200          {object}  response.Response{data=object}
// @Failure      400          {object}  response.Response
// @Router       /transactions/total-paid [get]
func (h *TransactionHandler) TotalPaid(c *gin.Context) {
	total, err := h.transactionService.TotalPaidByEmployee(c.Request.Context(), c.Query("employee_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"total_paid": total}))
}
