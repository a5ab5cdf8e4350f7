package handler

import (
	"net/http"

	"payroll/internal/middleware"
	"payroll/internal/service"
	"payroll/pkg/pagination"
	"payroll/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxBracketHandler struct {
	bracketService service.TaxBracketService
}

func NewTaxBracketHandler(bracketService service.TaxBracketService) *TaxBracketHandler {
	return &TaxBracketHandler{bracketService: bracketService}
}

func (h *TaxBracketHandler) RegisterRoutes(router *gin.RouterGroup) {
	brackets := router.Group("/tax-brackets")
	{
		// Reads are open to every authenticated role, mutations admin-only
		brackets.GET("", middleware.RequireRole("admin", "employer", "employee"), h.ListBrackets)
		brackets.GET("/:id", middleware.RequireRole("admin", "employer", "employee"), h.GetBracket)
		brackets.POST("/calculate", middleware.RequireRole("admin", "employer", "employee"), h.CalculateIRPP)
		brackets.POST("", middleware.RequireRole("admin"), h.CreateBracket)
		brackets.PUT("/:id", middleware.RequireRole("admin"), h.UpdateBracket)
		brackets.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteBracket)
	}
}

// ListBrackets handles GET /tax-brackets
// @Summary      List tax brackets
// @Tags         tax-brackets
// @Produce      json
// @Security     BearerAuth
// @Param        country  query     string  false  "Country code filter"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Items per page (default 20)"
// @Success      200      {object}  response.Response{data=object}
// @Failure      500      {object}  response.Response
// @Router       /tax-brackets [get]
func (h *TaxBracketHandler) ListBrackets(c *gin.Context) {
	params := pagination.Parse(c)

	brackets, total, err := h.bracketService.ListBrackets(c.Request.Context(), c.Query("country"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"tax_brackets": brackets,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// GetBracket handles GET /tax-brackets/:id
// @Summary      Get tax bracket by ID
// @Tags         tax-brackets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tax bracket UUID"
// @Success      200  {object}  response.Response{data=service.TaxBracketResponse}
// @Failure      404  {object}  response.Response
// @Router       /tax-brackets/{id} [get]
func (h *TaxBracketHandler) GetBracket(c *gin.Context) {
	bracket, err := h.bracketService.GetBracket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bracket))
}

// CalculateIRPP handles POST /tax-brackets/calculate
// @Summary      Calculate annual IRPP
// @Description  Runs the progressive engine over the active IRPP table for a country
// @Tags         tax-brackets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      object  true  "annual_income + country"
// @Success      200      {object}  response.Response{data=service.IRPPResult}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /tax-brackets/calculate [post]
func (h *TaxBracketHandler) CalculateIRPP(c *gin.Context) {
	var req struct {
		AnnualIncome string `json:"annual_income" binding:"required"`
		Country      string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.bracketService.CalculateIRPP(c.Request.Context(), req.AnnualIncome, req.Country)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateBracket handles POST /tax-brackets
// @Summary      Create a tax bracket
// @Description  Creates a bracket row and validates the resulting active table for its (country, tax_type)
// @Tags         tax-brackets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTaxBracketRequest  true  "Bracket Payload"
// @Success      201      {object}  response.Response{data=service.TaxBracketResponse}
// @Failure      400      {object}  response.Response
// @Router       /tax-brackets [post]
func (h *TaxBracketHandler) CreateBracket(c *gin.Context) {
	var req service.CreateTaxBracketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bracket, err := h.bracketService.CreateBracket(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bracket))
}

// UpdateBracket handles PUT /tax-brackets/:id
// @Summary      Update a tax bracket
// @Tags         tax-brackets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Tax bracket UUID"
// @Param        payload  body      service.UpdateTaxBracketRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.TaxBracketResponse}
// @Failure      400      {object}  response.Response
// @Router       /tax-brackets/{id} [put]
func (h *TaxBracketHandler) UpdateBracket(c *gin.Context) {
	var req service.UpdateTaxBracketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bracket, err := h.bracketService.UpdateBracket(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bracket))
}

// DeleteBracket handles DELETE /tax-brackets/:id
// @Summary      Delete a tax bracket
// @Tags         tax-brackets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tax bracket UUID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /tax-brackets/{id} [delete]
func (h *TaxBracketHandler) DeleteBracket(c *gin.Context) {
	if err := h.bracketService.DeleteBracket(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tax bracket deleted"))
}
