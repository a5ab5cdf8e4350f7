package handler

import (
	"net/http"

	"payroll/internal/middleware"
	"payroll/internal/service"
	"payroll/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	contractService service.ContractService
}

func NewContractHandler(contractService service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func (h *ContractHandler) RegisterRoutes(router *gin.RouterGroup) {
	contracts := router.Group("/contracts")
	contracts.Use(middleware.RequireRole("admin", "employer", "employee"))
	{
		contracts.POST("", h.CreateContract)
		contracts.GET("", h.ListContracts)
		contracts.GET("/active", h.ActiveContract)
		contracts.GET("/:id", h.GetContract)
		contracts.PUT("/:id", h.UpdateContract)
		contracts.DELETE("/:id", h.DeleteContract)
		contracts.POST("/:id/submit", h.SubmitContract)
		contracts.POST("/:id/sign", h.SignContract)
		contracts.POST("/:id/terminate", h.TerminateContract)
		contracts.POST("/:id/salary", h.ChangeSalary)
		contracts.GET("/:id/salary-history", h.GetSalaryHistory)
	}
}

// CreateContract handles POST /contracts
// @Summary      Create a contract
// @Description  Creates an employment contract. Employer-created contracts start at PENDING_SIGNATURE, others at DRAFT.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateContractRequest  true  "Contract Payload"
// @Success      201      {object}  response.Response{data=service.ContractResponse}
// @Failure      400      {object}  response.Response
// @Router       /contracts [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req service.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), currentUserID(c), currentUserRole(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contract))
}

// ListContracts handles GET /contracts filtered by employee, employer or status
// @Summary      List contracts
// @Description  Lists contracts filtered by employee_id, employer_id or status (one filter required)
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id  query     string  false  "Employee UUID"
// @Param        employer_id  query     string  false  "Employer UUID"
// @Param        status       query     string  false  "Contract status"
// @Success      200          {object}  response.Response{data=[]service.ContractResponse}
// @Failure      400          {object}  response.Response
// @Router       /contracts [get]
func (h *ContractHandler) ListContracts(c *gin.Context) {
	filter := service.ContractFilter{
		EmployeeID: c.Query("employee_id"),
		EmployerID: c.Query("employer_id"),
		Status:     c.Query("status"),
	}

	contracts, err := h.contractService.ListContracts(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contracts))
}

// ActiveContract handles GET /contracts/active?employee_id=...
// @Summary      Active contract of an employee
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id  query     string  true  "Employee UUID"
// @Success      200          {object}  response.Response{data=service.ContractResponse}
// @Failure      404          {object}  response.Response
// @Router       /contracts/active [get]
func (h *ContractHandler) ActiveContract(c *gin.Context) {
	contract, err := h.contractService.ActiveContract(c.Request.Context(), c.Query("employee_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// GetContract handles GET /contracts/:id
// @Summary      Get contract by ID
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract UUID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      404  {object}  response.Response
// @Router       /contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	contract, err := h.contractService.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// UpdateContract handles PUT /contracts/:id (DRAFT only)
// @Summary      Update a draft contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Contract UUID"
// @Param        payload  body      service.UpdateContractRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.ContractResponse}
// @Failure      400      {object}  response.Response
// @Router       /contracts/{id} [put]
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	var req service.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contract, err := h.contractService.UpdateContract(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// DeleteContract handles DELETE /contracts/:id (DRAFT only)
// @Summary      Delete a draft contract
// @Description  Deletes the contract only while it is still DRAFT; otherwise reports deleted=false
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract UUID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /contracts/{id} [delete]
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	deleted, err := h.contractService.DeleteContract(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}

// SubmitContract handles POST /contracts/:id/submit (DRAFT -> PENDING_SIGNATURE)
// @Summary      Submit a contract for signature
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract UUID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      400  {object}  response.Response
// @Router       /contracts/{id}/submit [post]
func (h *ContractHandler) SubmitContract(c *gin.Context) {
	contract, err := h.contractService.SubmitContract(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// SignContract handles POST /contracts/:id/sign (PENDING_SIGNATURE -> ACTIVE)
// @Summary      Sign a contract
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract UUID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      400  {object}  response.Response
// @Router       /contracts/{id}/sign [post]
func (h *ContractHandler) SignContract(c *gin.Context) {
	contract, err := h.contractService.SignContract(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// TerminateContract handles POST /contracts/:id/terminate
// @Summary      Terminate a contract
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract UUID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      400  {object}  response.Response
// @Router       /contracts/{id}/terminate [post]
func (h *ContractHandler) TerminateContract(c *gin.Context) {
	contract, err := h.contractService.TerminateContract(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// ChangeSalary handles POST /contracts/:id/salary
// @Summary      Change contract salary
// @Description  Updates the salary of an ACTIVE contract and appends a salary history entry
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Contract UUID"
// @Param        payload  body      service.ChangeSalaryRequest  true  "Salary Change Payload"
// @Success      200      {object}  response.Response{data=service.ContractResponse}
// @Failure      400      {object}  response.Response
// @Router       /contracts/{id}/salary [post]
func (h *ContractHandler) ChangeSalary(c *gin.Context) {
	var req service.ChangeSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contract, err := h.contractService.ChangeSalary(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// GetSalaryHistory handles GET /contracts/:id/salary-history
// @Summary      Salary history of a contract
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract UUID"
// @Success      200  {object}  response.Response{data=[]service.SalaryHistoryResponse}
// @Failure      400  {object}  response.Response
// @Router       /contracts/{id}/salary-history [get]
func (h *ContractHandler) GetSalaryHistory(c *gin.Context) {
	history, err := h.contractService.GetSalaryHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}
