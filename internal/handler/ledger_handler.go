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

type LedgerHandler struct {
	ledger service.LedgerService
	auth   *middleware.Auth
}

func NewLedgerHandler(ledger service.LedgerService, auth *middleware.Auth) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, auth: auth}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/ledger", h.auth.RequireRole(model.RoleFinance))
	{
		group.GET("/balances", h.Balances)
		group.GET("/transactions", h.Transactions)
		group.GET("/verify", h.Verify)
	}
}

// Balances returns the current balance of every supported currency
// @Summary      Ledger balances
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.LedgerBalance}
// @Router       /api/ledger/balances [get]
func (h *LedgerHandler) Balances(c *gin.Context) {
	balances, err := h.ledger.Balances(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balances))
}

// Transactions returns the ledger log, newest first
// @Summary      Ledger transactions
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        currency  query     string  false  "XOF, EUR or USD"
// @Param        request   query     string  false  "Related request reference"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=response.Page}
// @Failure      422       {object}  response.Response
// @Router       /api/ledger/transactions [get]
func (h *LedgerHandler) Transactions(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.LedgerFilter{
		RelatedRequestID: c.Query("request"),
		Page:             p.Page,
		Limit:            p.Limit,
	}
	if raw := c.Query("currency"); raw != "" {
		currency, err := model.ParseCurrency(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		filter.Currency = currency
	}

	items, total, err := h.ledger.Transactions(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(items, total)))
}

// Verify recomputes balances from the transaction log
// @Summary      Verify ledger consistency
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.VerifyReport}
// @Router       /api/ledger/verify [get]
func (h *LedgerHandler) Verify(c *gin.Context) {
	report, err := h.ledger.Verify(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
