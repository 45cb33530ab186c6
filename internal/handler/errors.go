package handler

import (
	"errors"
	"net/http"
	"strings"

	"caisse/internal/middleware"
	"caisse/internal/model"
	"caisse/internal/service"
	"caisse/pkg/response"

	"github.com/gin-gonic/gin"
)

type errorKind struct {
	target error
	status int
	code   string
}

var errorKinds = []errorKind{
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
	{service.ErrPaymentBlocked, http.StatusConflict, "payment_blocked"},
	{service.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
	{service.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{service.ErrExceedsRemaining, http.StatusUnprocessableEntity, "exceeds_remaining"},
	{model.ErrValidation, http.StatusUnprocessableEntity, "validation"},
	{model.ErrUnsupportedCurrency, http.StatusUnprocessableEntity, "validation"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			c.JSON(k.status, response.Fail(k.status, k.code, err.Error()))
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal error"))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// referenceParam rebuilds a request identifier from the :year/:month/:seq path segments.
func referenceParam(c *gin.Context, kind model.RequestKind) string {
	return strings.Join([]string{kind.Prefix(), c.Param("year"), c.Param("month"), c.Param("seq")}, "/")
}

// bindReason reads an optional {"reason": "..."} body.
func bindReason(c *gin.Context) (string, bool) {
	var req service.ReasonDTO
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return "", false
	}
	return req.Reason, true
}

func actor(c *gin.Context) string {
	return middleware.Actor(c)
}
