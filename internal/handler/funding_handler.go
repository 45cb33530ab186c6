package handler

import (
	"net/http"

	"caisse/internal/middleware"
	"caisse/internal/model"
	"caisse/internal/repository"
	"caisse/internal/service"
	"caisse/pkg/pagination"
	"caisse/pkg/response"

	"github.com/gin-gonic/gin"
)

type FundingHandler struct {
	fundingService service.FundingService
	history        service.HistoryService
	auth           *middleware.Auth
}

func NewFundingHandler(fundingService service.FundingService, history service.HistoryService, auth *middleware.Auth) *FundingHandler {
	return &FundingHandler{fundingService: fundingService, history: history, auth: auth}
}

func (h *FundingHandler) RegisterRoutes(router *gin.RouterGroup) {
	funding := router.Group("/api/funding")
	{
		funding.GET("", h.auth.RequireRole(model.RoleFinance, model.RoleApprover, model.RoleRequester), h.List)
		funding.POST("", h.auth.RequireRole(model.RoleRequester, model.RoleFinance), h.Create)

		one := funding.Group("/:year/:month/:seq")
		one.GET("", h.auth.RequireRole(model.RoleFinance, model.RoleApprover, model.RoleRequester), h.Get)
		one.GET("/history", h.auth.RequireRole(model.RoleFinance, model.RoleApprover, model.RoleRequester), h.History)
		one.POST("/pre-approve", h.auth.RequireRole(model.RoleApprover), h.PreApprove)
		one.POST("/details", h.auth.RequireRole(model.RoleFinance), h.SubmitDetails)
		one.POST("/approve", h.auth.RequireRole(model.RoleFinance), h.FinalApprove)
		one.POST("/reject", h.auth.RequireRole(model.RoleApprover, model.RoleFinance), h.Reject)
		one.POST("/issue", h.auth.RequireRole(model.RoleApprover, model.RoleFinance), h.ReportIssue)
		one.PUT("/details", h.auth.RequireRole(model.RoleFinance), h.CorrectDetails)
	}
}

// Create opens a funding request
// @Summary      Create a funding request
// @Description  Amount accepts "<number> <CCY>" or a number with a separate currency
// @Tags         funding
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateFundingDTO  true  "Funding request"
// @Success      201      {object}  response.Response{data=model.FundingRequest}
// @Failure      422      {object}  response.Response
// @Router       /api/funding [post]
func (h *FundingHandler) Create(c *gin.Context) {
	var req service.CreateFundingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	f, err := h.fundingService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, f))
}

// List returns funding requests
// @Summary      List funding requests
// @Tags         funding
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/funding [get]
func (h *FundingHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.fundingService.List(c.Request.Context(), repository.RequestFilter{
		Status: c.Query("status"), Page: p.Page, Limit: p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(items, total)))
}

// Get returns one funding request
// @Summary      Get a funding request
// @Tags         funding
// @Security     BearerAuth
// @Produce      json
// @Param        year   path      string  true  "Year"
// @Param        month  path      string  true  "Month"
// @Param        seq    path      string  true  "Sequence"
// @Success      200    {object}  response.Response{data=model.FundingRequest}
// @Failure      404    {object}  response.Response
// @Router       /api/funding/{year}/{month}/{seq} [get]
func (h *FundingHandler) Get(c *gin.Context) {
	f, err := h.fundingService.Get(c.Request.Context(), referenceParam(c, model.KindFunding))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, f))
}

// History returns the workflow trail of a funding request
// @Summary      Funding request history
// @Tags         funding
// @Security     BearerAuth
// @Produce      json
// @Param        year   path      string  true  "Year"
// @Param        month  path      string  true  "Month"
// @Param        seq    path      string  true  "Sequence"
// @Success      200    {object}  response.Response{data=[]model.WorkflowHistory}
// @Router       /api/funding/{year}/{month}/{seq}/history [get]
func (h *FundingHandler) History(c *gin.Context) {
	entries, err := h.history.ForRequest(c.Request.Context(), referenceParam(c, model.KindFunding))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// PreApprove moves a pending request to pre-approved
// @Summary      Pre-approve a funding request
// @Tags         funding
// @Security     BearerAuth
// @Produce      json
// @Param        year   path      string  true  "Year"
// @Param        month  path      string  true  "Month"
// @Param        seq    path      string  true  "Sequence"
// @Success      200    {object}  response.Response{data=model.FundingRequest}
// @Failure      409    {object}  response.Response
// @Router       /api/funding/{year}/{month}/{seq}/pre-approve [post]
func (h *FundingHandler) PreApprove(c *gin.Context) {
	f, err := h.fundingService.PreApprove(c.Request.Context(), referenceParam(c, model.KindFunding), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, f))
}

// SubmitDetails records the disbursement method
// @Summary      Submit disbursement details
// @Tags         funding
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string                     true  "Year"
// @Param        month    path      string                     true  "Month"
// @Param        seq      path      string                     true  "Sequence"
// @Param        payload  body      service.FundingDetailsDTO  true  "Details"
// @Success      200      {object}  response.Response{data=model.FundingRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/funding/{year}/{month}/{seq}/details [post]
func (h *FundingHandler) SubmitDetails(c *gin.Context) {
	var req service.FundingDetailsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	f, err := h.fundingService.SubmitDetails(c.Request.Context(), referenceParam(c, model.KindFunding), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, f))
}

// FinalApprove approves the request and credits the ledger
// @Summary      Final approval
// @Description  Credits the ledger for the requested amount, at most once per request
// @Tags         funding
// @Security     BearerAuth
// @Produce      json
// @Param        year   path      string  true  "Year"
// @Param        month  path      string  true  "Month"
// @Param        seq    path      string  true  "Sequence"
// @Success      200    {object}  response.Response{data=model.FundingRequest}
// @Failure      409    {object}  response.Response
// @Router       /api/funding/{year}/{month}/{seq}/approve [post]
func (h *FundingHandler) FinalApprove(c *gin.Context) {
	f, err := h.fundingService.FinalApprove(c.Request.Context(), referenceParam(c, model.KindFunding), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, f))
}

// Reject closes a non-terminal request
// @Summary      Reject a funding request
// @Tags         funding
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string             true   "Year"
// @Param        month    path      string             true   "Month"
// @Param        seq      path      string             true   "Sequence"
// @Param        payload  body      service.ReasonDTO  false  "Reason"
// @Success      200      {object}  response.Response{data=model.FundingRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/funding/{year}/{month}/{seq}/reject [post]
func (h *FundingHandler) Reject(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	f, err := h.fundingService.Reject(c.Request.Context(), referenceParam(c, model.KindFunding), actor(c), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, f))
}

// ReportIssue flags a problem with the submitted details
// @Summary      Report an issue on funding details
// @Tags         funding
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string             true  "Year"
// @Param        month    path      string             true  "Month"
// @Param        seq      path      string             true  "Sequence"
// @Param        payload  body      service.ReasonDTO  true  "Reason"
// @Success      200      {object}  response.Response{data=model.FundingRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/funding/{year}/{month}/{seq}/issue [post]
func (h *FundingHandler) ReportIssue(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	f, err := h.fundingService.ReportIssue(c.Request.Context(), referenceParam(c, model.KindFunding), actor(c), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, f))
}

// CorrectDetails edits the details and clears a reported issue
// @Summary      Correct disbursement details
// @Tags         funding
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string                     true  "Year"
// @Param        month    path      string                     true  "Month"
// @Param        seq      path      string                     true  "Sequence"
// @Param        payload  body      service.FundingDetailsDTO  true  "Details"
// @Success      200      {object}  response.Response{data=model.FundingRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/funding/{year}/{month}/{seq}/details [put]
func (h *FundingHandler) CorrectDetails(c *gin.Context) {
	var req service.FundingDetailsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	f, err := h.fundingService.CorrectDetails(c.Request.Context(), referenceParam(c, model.KindFunding), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, f))
}
