package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caisse/internal/middleware"
	"caisse/internal/model"
	"caisse/internal/repository"
	"caisse/internal/service"
	"caisse/internal/testutil"
	"caisse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

type server struct {
	engine *gin.Engine
	users  service.UserService
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := zap.NewNop()
	tx := repository.NewTransactionManager(db)
	sequences := repository.NewSequenceRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	prRepo := repository.NewPaymentRequestRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	events := service.NewOutboxPublisher(repository.NewOutboxRepository(db), nil)

	ledger := service.NewLedgerService(tx, repository.NewLedgerRepository(db), events, log)
	require.NoError(t, ledger.Init(context.Background()))
	history := service.NewHistoryService(historyRepo)
	funding := service.NewFundingService(tx, repository.NewFundingRepository(db), sequences, historyRepo, ledger, events, log)
	prs := service.NewPaymentRequestService(tx, prRepo, sequences, historyRepo, events, log)
	orders := service.NewOrderService(tx, orderRepo, sequences, historyRepo, events, log)
	payments := service.NewPaymentService(tx, repository.NewPaymentRepository(db), prRepo, orderRepo, historyRepo, ledger, events, log)
	users := service.NewUserService(repository.NewUserRepository(db), testSecret, time.Hour, log)

	auth := middleware.NewAuth(testSecret, false, 3600)
	engine := gin.New()
	engine.Use(middleware.RequestLogger(log))
	root := engine.Group("")
	NewUserHandler(users, auth).RegisterRoutes(root)
	NewFundingHandler(funding, history, auth).RegisterRoutes(root)
	NewPayableHandler(prs, orders, payments, history, auth).RegisterRoutes(root)
	NewLedgerHandler(ledger, auth).RegisterRoutes(root)
	NewHistoryHandler(history, auth).RegisterRoutes(root)

	return &server{engine: engine, users: users}
}

// login creates a user with role and returns its bearer token.
func (s *server) login(t *testing.T, username, role string) string {
	t.Helper()
	_, err := s.users.CreateUser(context.Background(), service.CreateUserRequest{
		Username: username, Email: username + "@caisse.test", Password: "secret123", Role: role,
	})
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/login", "", service.LoginUserRequest{Login: username, Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data service.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (s *server) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (response.Response, map[string]interface{}) {
	t.Helper()
	var raw struct {
		response.Response
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	return raw.Response, raw.Data
}

// pathOf turns "FUND/2025/03/0001" into "2025/03/0001".
func pathOf(reference string) string {
	_, rest, _ := strings.Cut(reference, "/")
	return rest
}

func TestAuth_TokenAndRoles(t *testing.T) {
	s := newServer(t)
	requester := s.login(t, "alice", model.RoleRequester)

	w := s.do(t, http.MethodGet, "/api/funding", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/funding", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/ledger/balances", requester, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/me", requester, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, me := decode(t, w)
	assert.Equal(t, "alice", me["username"])

	admin := s.login(t, "root", model.RoleAdmin)
	w = s.do(t, http.MethodGet, "/api/ledger/balances", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_SetsCookie(t *testing.T) {
	s := newServer(t)
	_, err := s.users.CreateUser(context.Background(), service.CreateUserRequest{
		Username: "bob", Email: "bob@caisse.test", Password: "secret123", Role: model.RoleApprover,
	})
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/login", "", service.LoginUserRequest{Login: "bob", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/login", "", service.LoginUserRequest{Login: "bob@caisse.test", Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=")
}

func TestFundingFlow_OverHTTP(t *testing.T) {
	s := newServer(t)
	requester := s.login(t, "alice", model.RoleRequester)
	approver := s.login(t, "bob", model.RoleApprover)
	finance := s.login(t, "carol", model.RoleFinance)

	w := s.do(t, http.MethodPost, "/api/funding", requester, service.CreateFundingDTO{Amount: "1 500 000 XOF", Reason: "Site works"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, created := decode(t, w)
	ref := created["reference"].(string)
	base := "/api/funding/" + pathOf(ref)

	w = s.do(t, http.MethodPost, base+"/pre-approve", requester, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, base+"/approve", finance, nil)
	res, _ := decode(t, w)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", res.Code)

	w = s.do(t, http.MethodPost, base+"/pre-approve", approver, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, base+"/pre-approve", approver, nil)
	res, _ = decode(t, w)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_processed", res.Code)

	w = s.do(t, http.MethodPost, base+"/details", finance, service.FundingDetailsDTO{Method: "transfer", Details: "BOA CI001"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, base+"/approve", finance, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, approved := decode(t, w)
	assert.Equal(t, string(model.FundingApproved), approved["status"])

	w = s.do(t, http.MethodGet, "/api/ledger/balances", finance, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var balances struct {
		Data []model.LedgerBalance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balances))
	for _, b := range balances.Data {
		if b.Currency == model.CurrencyXOF {
			assert.Equal(t, "1500000", b.Balance.String())
		}
	}

	w = s.do(t, http.MethodGet, base+"/history", requester, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data []model.WorkflowHistory `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Data, 4)
}

func TestPayments_OverHTTP(t *testing.T) {
	s := newServer(t)
	requester := s.login(t, "alice", model.RoleRequester)
	approver := s.login(t, "bob", model.RoleApprover)
	finance := s.login(t, "carol", model.RoleFinance)

	w := s.do(t, http.MethodPost, "/api/payment-requests", requester, service.CreatePaymentRequestDTO{
		Title: "Generator repair", Beneficiary: "Ets Kone", Amount: "50000 XOF",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, created := decode(t, w)
	base := "/api/payment-requests/" + pathOf(created["reference"].(string))

	w = s.do(t, http.MethodPost, base+"/validate", approver, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cash := service.PaymentDTO{Mode: model.ModeCash, Amount: "20000"}
	w = s.do(t, http.MethodPost, base+"/payments", finance, cash)
	res, _ := decode(t, w)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "insufficient_funds", res.Code)

	transfer := service.PaymentDTO{
		Mode: model.ModeTransfer, Amount: "60000", Proofs: []string{"receipt.pdf"},
		ModeDetails: map[string]string{"bank": "BOA", "account": "CI001"},
	}
	w = s.do(t, http.MethodPost, base+"/payments", finance, transfer)
	res, _ = decode(t, w)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "exceeds_remaining", res.Code)

	transfer.Amount = "50000"
	w = s.do(t, http.MethodPost, base+"/payments", finance, transfer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, outcome := decode(t, w)
	assert.Equal(t, string(model.PaymentPaid), outcome["payment_status"])

	w = s.do(t, http.MethodPost, "/api/payment-requests/2025/01/9999/validate", approver, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("funding FUND/2025/01/0001: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{service.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
		{service.ErrPaymentBlocked, http.StatusConflict, "payment_blocked"},
		{&service.TransitionError{Reference: "PAY/2025/01/0001", Action: "cancel", Status: "Validée", Err: service.ErrInvalidState}, http.StatusConflict, "invalid_state"},
		{service.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
		{service.ErrExceedsRemaining, http.StatusUnprocessableEntity, "exceeds_remaining"},
		{model.Invalid("amount", "must be positive"), http.StatusUnprocessableEntity, "validation"},
		{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errors.New("disk full"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var res response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, "error", res.Status)
		})
	}
}

func TestReferenceParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{
		{Key: "year", Value: "2025"},
		{Key: "month", Value: "03"},
		{Key: "seq", Value: "0007"},
	}

	assert.Equal(t, "CMD/2025/03/0007", referenceParam(c, model.KindOrder))
	assert.Equal(t, "PAY/2025/03/0007", referenceParam(c, model.KindPaymentRequest))
	assert.Equal(t, "FUND/2025/03/0007", referenceParam(c, model.KindFunding))
}
