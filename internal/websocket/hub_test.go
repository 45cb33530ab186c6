package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caisse/internal/model"
	"caisse/internal/notify"
	"caisse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func token(t *testing.T, secret []byte, name, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestChannelsFor(t *testing.T) {
	got := channelsFor("awa", model.RoleApprover, "finance, user:moussa,,approvals")
	assert.Len(t, got, 3)
	assert.Contains(t, got, "user:awa")
	assert.Contains(t, got, "finance")
	assert.NotContains(t, got, "user:moussa")

	assert.Len(t, channelsFor("ali", model.RoleRequester, "finance"), 1)
}

func TestHub_DeliversToSubscribers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("test-secret")
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, secret) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?channels=finance&token=" + token(t, secret, "awa", model.RoleFinance)
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.Subscribers("finance") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Notify(ctx, notify.Notification{Channel: "other", Event: "ignored"}))
	require.NoError(t, hub.Notify(ctx, notify.Notification{Channel: "finance", EntityID: "PAY/2025/01/0001", Event: "payment.recorded"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"payment.recorded"`)
	assert.NotContains(t, string(data), "ignored")
}

func TestServeWs_RejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, []byte("secret")) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws?token=garbage", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHub_AfterShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("test-secret")
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, secret) })
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?channels=finance&token=" + token(t, secret, "awa", model.RoleFinance)

	live, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer live.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("finance") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	<-hub.Done()

	// the dropped client is closed by the server and its reader exits
	require.NoError(t, live.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = live.ReadMessage()
	assert.Error(t, err)

	// a late connection is upgraded then closed instead of hanging on registration
	late, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer late.Close()
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseGoingAway), "got %v", err)

	err = hub.Notify(context.Background(), notify.Notification{Channel: "finance", Event: "payment.recorded"})
	assert.ErrorIs(t, err, ErrHubClosed)
}
