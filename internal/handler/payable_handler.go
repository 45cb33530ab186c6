package handler

import (
	"net/http"
	"strconv"

	"caisse/internal/middleware"
	"caisse/internal/model"
	"caisse/internal/repository"
	"caisse/internal/service"
	"caisse/pkg/pagination"
	"caisse/pkg/response"

	"github.com/gin-gonic/gin"
)

// PayableHandler serves payment requests, orders and the payments recorded against them.
type PayableHandler struct {
	paymentRequests service.PaymentRequestService
	orders          service.OrderService
	payments        service.PaymentService
	history         service.HistoryService
	auth            *middleware.Auth
}

func NewPayableHandler(
	paymentRequests service.PaymentRequestService,
	orders service.OrderService,
	payments service.PaymentService,
	history service.HistoryService,
	auth *middleware.Auth,
) *PayableHandler {
	return &PayableHandler{
		paymentRequests: paymentRequests,
		orders:          orders,
		payments:        payments,
		history:         history,
		auth:            auth,
	}
}

func (h *PayableHandler) RegisterRoutes(router *gin.RouterGroup) {
	readers := h.auth.RequireRole(model.RoleFinance, model.RoleApprover, model.RoleRequester)
	creators := h.auth.RequireRole(model.RoleRequester, model.RoleFinance)
	approvers := h.auth.RequireRole(model.RoleApprover)
	finance := h.auth.RequireRole(model.RoleFinance)

	prs := router.Group("/api/payment-requests")
	{
		prs.GET("", readers, h.ListPaymentRequests)
		prs.POST("", creators, h.CreatePaymentRequest)

		one := prs.Group("/:year/:month/:seq")
		one.GET("", readers, h.GetPaymentRequest)
		one.GET("/history", readers, h.historyOf(model.KindPaymentRequest))
		one.POST("/validate", approvers, h.ValidatePaymentRequest)
		one.POST("/reject", approvers, h.RejectPaymentRequest)
		one.POST("/cancel", creators, h.CancelPaymentRequest)
		h.paymentRoutes(one, model.KindPaymentRequest, finance)
	}

	orders := router.Group("/api/orders")
	{
		orders.GET("", readers, h.ListOrders)
		orders.POST("", creators, h.CreateOrder)

		one := orders.Group("/:year/:month/:seq")
		one.GET("", readers, h.GetOrder)
		one.GET("/history", readers, h.historyOf(model.KindOrder))
		one.POST("/proformas", creators, h.AddProforma)
		one.POST("/validate", approvers, h.ValidateOrder)
		one.POST("/reject", approvers, h.RejectOrder)
		one.POST("/cancel", creators, h.CancelOrder)
		h.paymentRoutes(one, model.KindOrder, finance)
	}
}

func (h *PayableHandler) paymentRoutes(one *gin.RouterGroup, kind model.RequestKind, finance gin.HandlerFunc) {
	one.POST("/payments", finance, h.recordPayment(kind))
	one.PUT("/payments/:index", finance, h.editPayment(kind))
	one.POST("/payments/issue", finance, h.reportPaymentIssue(kind))
}

func (h *PayableHandler) historyOf(kind model.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.history.ForRequest(c.Request.Context(), referenceParam(c, kind))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
	}
}

// CreatePaymentRequest opens a payment request
// @Summary      Create a payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePaymentRequestDTO  true  "Payment request"
// @Success      201      {object}  response.Response{data=model.PaymentRequest}
// @Failure      422      {object}  response.Response
// @Router       /api/payment-requests [post]
func (h *PayableHandler) CreatePaymentRequest(c *gin.Context) {
	var req service.CreatePaymentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.paymentRequests.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, p))
}

// ListPaymentRequests returns payment requests
// @Summary      List payment requests
// @Tags         payment-requests
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/payment-requests [get]
func (h *PayableHandler) ListPaymentRequests(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.paymentRequests.List(c.Request.Context(), repository.RequestFilter{
		Status: c.Query("status"), Page: p.Page, Limit: p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(items, total)))
}

// GetPaymentRequest returns one payment request with its payments
// @Summary      Get a payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Produce      json
// @Param        year   path      string  true  "Year"
// @Param        month  path      string  true  "Month"
// @Param        seq    path      string  true  "Sequence"
// @Success      200    {object}  response.Response{data=model.PaymentRequest}
// @Failure      404    {object}  response.Response
// @Router       /api/payment-requests/{year}/{month}/{seq} [get]
func (h *PayableHandler) GetPaymentRequest(c *gin.Context) {
	p, err := h.paymentRequests.Get(c.Request.Context(), referenceParam(c, model.KindPaymentRequest))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p))
}

// ValidatePaymentRequest approves a pending payment request
// @Summary      Validate a payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Produce      json
// @Param        year   path      string  true  "Year"
// @Param        month  path      string  true  "Month"
// @Param        seq    path      string  true  "Sequence"
// @Success      200    {object}  response.Response{data=model.PaymentRequest}
// @Failure      409    {object}  response.Response
// @Router       /api/payment-requests/{year}/{month}/{seq}/validate [post]
func (h *PayableHandler) ValidatePaymentRequest(c *gin.Context) {
	p, err := h.paymentRequests.Validate(c.Request.Context(), referenceParam(c, model.KindPaymentRequest), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p))
}

// RejectPaymentRequest rejects a pending payment request
// @Summary      Reject a payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string             true   "Year"
// @Param        month    path      string             true   "Month"
// @Param        seq      path      string             true   "Sequence"
// @Param        payload  body      service.ReasonDTO  false  "Reason"
// @Success      200      {object}  response.Response{data=model.PaymentRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/payment-requests/{year}/{month}/{seq}/reject [post]
func (h *PayableHandler) RejectPaymentRequest(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	p, err := h.paymentRequests.Reject(c.Request.Context(), referenceParam(c, model.KindPaymentRequest), actor(c), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p))
}

// CancelPaymentRequest withdraws a request that has not been paid
// @Summary      Cancel a payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string             true   "Year"
// @Param        month    path      string             true   "Month"
// @Param        seq      path      string             true   "Sequence"
// @Param        payload  body      service.ReasonDTO  false  "Reason"
// @Success      200      {object}  response.Response{data=model.PaymentRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/payment-requests/{year}/{month}/{seq}/cancel [post]
func (h *PayableHandler) CancelPaymentRequest(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	p, err := h.paymentRequests.Cancel(c.Request.Context(), referenceParam(c, model.KindPaymentRequest), actor(c), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p))
}

// CreateOrder opens a purchase order
// @Summary      Create an order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderDTO  true  "Order"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      422      {object}  response.Response
// @Router       /api/orders [post]
func (h *PayableHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, o))
}

// ListOrders returns orders
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/orders [get]
func (h *PayableHandler) ListOrders(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.orders.List(c.Request.Context(), repository.RequestFilter{
		Status: c.Query("status"), Page: p.Page, Limit: p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(items, total)))
}

// GetOrder returns one order with proformas and payments
// @Summary      Get an order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        year   path      string  true  "Year"
// @Param        month  path      string  true  "Month"
// @Param        seq    path      string  true  "Sequence"
// @Success      200    {object}  response.Response{data=model.Order}
// @Failure      404    {object}  response.Response
// @Router       /api/orders/{year}/{month}/{seq} [get]
func (h *PayableHandler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), referenceParam(c, model.KindOrder))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, o))
}

// AddProforma attaches a supplier quote to a pending order
// @Summary      Add a proforma
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string               true  "Year"
// @Param        month    path      string               true  "Month"
// @Param        seq      path      string               true  "Sequence"
// @Param        payload  body      service.ProformaDTO  true  "Proforma"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      409      {object}  response.Response
// @Router       /api/orders/{year}/{month}/{seq}/proformas [post]
func (h *PayableHandler) AddProforma(c *gin.Context) {
	var req service.ProformaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.AddProforma(c.Request.Context(), referenceParam(c, model.KindOrder), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, o))
}

// ValidateOrder approves a pending order against one proforma
// @Summary      Validate an order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string                    true  "Year"
// @Param        month    path      string                    true  "Month"
// @Param        seq      path      string                    true  "Sequence"
// @Param        payload  body      service.ValidateOrderDTO  true  "Chosen proforma"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      409      {object}  response.Response
// @Router       /api/orders/{year}/{month}/{seq}/validate [post]
func (h *PayableHandler) ValidateOrder(c *gin.Context) {
	var req service.ValidateOrderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Validate(c.Request.Context(), referenceParam(c, model.KindOrder), actor(c), req.ProformaID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, o))
}

// RejectOrder rejects a pending order
// @Summary      Reject an order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string             true   "Year"
// @Param        month    path      string             true   "Month"
// @Param        seq      path      string             true   "Sequence"
// @Param        payload  body      service.ReasonDTO  false  "Reason"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      409      {object}  response.Response
// @Router       /api/orders/{year}/{month}/{seq}/reject [post]
func (h *PayableHandler) RejectOrder(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	o, err := h.orders.Reject(c.Request.Context(), referenceParam(c, model.KindOrder), actor(c), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, o))
}

// CancelOrder withdraws an order that has not been paid
// @Summary      Cancel an order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string             true   "Year"
// @Param        month    path      string             true   "Month"
// @Param        seq      path      string             true   "Sequence"
// @Param        payload  body      service.ReasonDTO  false  "Reason"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      409      {object}  response.Response
// @Router       /api/orders/{year}/{month}/{seq}/cancel [post]
func (h *PayableHandler) CancelOrder(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	o, err := h.orders.Cancel(c.Request.Context(), referenceParam(c, model.KindOrder), actor(c), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, o))
}

// recordPayment appends a payment; cash payments debit the ledger.
// @Summary      Record a payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string              true  "Year"
// @Param        month    path      string              true  "Month"
// @Param        seq      path      string              true  "Sequence"
// @Param        payload  body      service.PaymentDTO  true  "Payment"
// @Success      201      {object}  response.Response{data=service.PaymentOutcome}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/payment-requests/{year}/{month}/{seq}/payments [post]
// @Router       /api/orders/{year}/{month}/{seq}/payments [post]
func (h *PayableHandler) recordPayment(kind model.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PaymentDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		out, err := h.payments.RecordPayment(c.Request.Context(), referenceParam(c, kind), actor(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response.Success(http.StatusCreated, out))
	}
}

// editPayment replaces payment #index in place.
// @Summary      Correct a payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string              true  "Year"
// @Param        month    path      string              true  "Month"
// @Param        seq      path      string              true  "Sequence"
// @Param        index    path      int                 true  "Payment index, from 0"
// @Param        payload  body      service.PaymentDTO  true  "Payment"
// @Success      200      {object}  response.Response{data=service.PaymentOutcome}
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/payment-requests/{year}/{month}/{seq}/payments/{index} [put]
// @Router       /api/orders/{year}/{month}/{seq}/payments/{index} [put]
func (h *PayableHandler) editPayment(kind model.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			badRequest(c, err)
			return
		}
		var req service.PaymentDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		out, err := h.payments.EditPayment(c.Request.Context(), referenceParam(c, kind), index, actor(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
	}
}

// reportPaymentIssue blocks further payments until the latest one is corrected.
// @Summary      Report a payment issue
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        year     path      string             true  "Year"
// @Param        month    path      string             true  "Month"
// @Param        seq      path      string             true  "Sequence"
// @Param        payload  body      service.ReasonDTO  true  "Reason"
// @Success      200      {object}  response.Response{data=service.PaymentOutcome}
// @Failure      409      {object}  response.Response
// @Router       /api/payment-requests/{year}/{month}/{seq}/payments/issue [post]
// @Router       /api/orders/{year}/{month}/{seq}/payments/issue [post]
func (h *PayableHandler) reportPaymentIssue(kind model.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		reason, ok := bindReason(c)
		if !ok {
			return
		}
		out, err := h.payments.ReportIssue(c.Request.Context(), referenceParam(c, kind), actor(c), reason)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
	}
}
