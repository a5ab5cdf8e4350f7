package handler

import (
	"net/http"

	"payroll/internal/middleware"
	"payroll/internal/service"
	"payroll/pkg/response"

	"github.com/gin-gonic/gin"
)

type SummaryHandler struct {
	summaryService service.SummaryService
}

func NewSummaryHandler(summaryService service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

func (h *SummaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	summary := router.Group("/summary")
	summary.Use(middleware.RequireRole("admin", "employer", "employee"))
	{
		summary.GET("/employees/:id", h.EmployeeSummary)
	}
}

// EmployeeSummary handles GET /summary/employees/:id
// @Summary      Employee payroll summary
// @Description  Active contract, payslip totals, ledger totals and latest period for one employee
// @Tags         summary
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee UUID"
// @Success      200  {object}  response.Response{data=service.EmployeeSummaryResponse}
// @Failure      400  {object}  response.Response
// @Router       /summary/employees/{id} [get]
func (h *SummaryHandler) EmployeeSummary(c *gin.Context) {
	summary, err := h.summaryService.EmployeeSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
