package handler

import (
	"net/http"

	"caisse/internal/middleware"
	"caisse/internal/model"
	"caisse/internal/service"
	"caisse/pkg/pagination"
	"caisse/pkg/response"

	"github.com/gin-gonic/gin"
)

// HistoryHandler exposes the workflow audit trail across all requests.
type HistoryHandler struct {
	history service.HistoryService
	auth    *middleware.Auth
}

func NewHistoryHandler(history service.HistoryService, auth *middleware.Auth) *HistoryHandler {
	return &HistoryHandler{history: history, auth: auth}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/history", h.auth.RequireRole(model.RoleAdmin), h.List)
}

// List returns workflow history entries, newest first
// @Summary      Workflow history
// @Tags         history
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.Page}
// @Router       /api/history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	entries, total, err := h.history.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(entries, total)))
}
