package handler

import (
	"net/http"

	"payroll/internal/middleware"
	"payroll/internal/service"
	"payroll/pkg/response"

	"github.com/gin-gonic/gin"
)

type PayslipHandler struct {
	payslipService service.PayslipService
}

func NewPayslipHandler(payslipService service.PayslipService) *PayslipHandler {
	return &PayslipHandler{payslipService: payslipService}
}

func (h *PayslipHandler) RegisterRoutes(router *gin.RouterGroup) {
	payslips := router.Group("/payslips")
	payslips.Use(middleware.RequireRole("admin", "employer", "employee"))
	{
		payslips.POST("/generate", h.Generate)
		payslips.POST("/preview", h.Preview)
		payslips.GET("", h.List)
		payslips.GET("/:id", h.GetByID)
		payslips.PATCH("/:id/status", h.UpdatePaymentStatus)
		payslips.DELETE("/:id", h.Delete)
	}
}

// Generate handles POST /payslips/generate
// @Summary      Generate a payslip
// @Description  Computes CNSS, IRPP and net salary for a contract period and persists the payslip. Idempotent per (contract, month, year).
// @Tags         payslips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.GeneratePayslipRequest  true  "Generation Payload"
// @Success      201      {object}  response.Response{data=service.PayslipResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /payslips/generate [post]
func (h *PayslipHandler) Generate(c *gin.Context) {
	var req service.GeneratePayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payslip, err := h.payslipService.Generate(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payslip))
}

// Preview handles POST /payslips/preview
// @Summary      Preview a salary breakdown
// @Description  Computes the full deduction breakdown for a gross salary without persisting anything
// @Tags         payslips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PreviewRequest  true  "Preview Payload"
// @Success      200      {object}  response.Response{data=service.PreviewResponse}
// @Failure      400      {object}  response.Response
// @Router       /payslips/preview [post]
func (h *PayslipHandler) Preview(c *gin.Context) {
	var req service.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	preview, err := h.payslipService.Preview(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// List handles GET /payslips filtered by contract_id or employee_id
// @Summary      List payslips
// @Tags         payslips
// @Produce      json
// @Security     BearerAuth
// @Param        contract_id  query     string  false  "Contract UUID"
// @Param        employee_id  query     string  false  "Employee UUID"
// @Success      200          {object}  response.Response{data=[]service.PayslipResponse}
// @Failure      400          {object}  response.Response
// @Router       /payslips [get]
func (h *PayslipHandler) List(c *gin.Context) {
	contractID := c.Query("contract_id")
	employeeID := c.Query("employee_id")

	var payslips []service.PayslipResponse
	var err error
	switch {
	case contractID != "":
		payslips, err = h.payslipService.ListByContract(c.Request.Context(), contractID)
	case employeeID != "":
		payslips, err = h.payslipService.ListByEmployee(c.Request.Context(), employeeID)
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "contract_id or employee_id query parameter is required"))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payslips))
}

// GetByID handles GET /payslips/:id
// @Summary      Get payslip by ID
// @Tags         payslips
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payslip UUID"
// @Success      200  {object}  response.Response{data=service.PayslipResponse}
// @Failure      404  {object}  response.Response
// @Router       /payslips/{id} [get]
func (h *PayslipHandler) GetByID(c *gin.Context) {
	payslip, err := h.payslipService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payslip))
}

// UpdatePaymentStatus handles PATCH /payslips/:id/status
// @Summary      Update payslip payment status
// @Description  PENDING->PAID (sets payment date), PENDING->FAILED, FAILED->PENDING; other moves rejected
// @Tags         payslips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Payslip UUID"
// @Param        payload  body      service.UpdatePaymentStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.PayslipResponse}
// @Failure      400      {object}  response.Response
// @Router       /payslips/{id}/status [patch]
func (h *PayslipHandler) UpdatePaymentStatus(c *gin.Context) {
	var req service.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payslip, err := h.payslipService.UpdatePaymentStatus(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payslip))
}

// Delete handles DELETE /payslips/:id (PENDING only)
// @Summary      Delete a pending payslip
// @Description  Deletes the payslip only while payment is still PENDING; otherwise reports deleted=false
// @Tags         payslips
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payslip UUID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /payslips/{id} [delete]
func (h *PayslipHandler) Delete(c *gin.Context) {
	deleted, err := h.payslipService.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}
