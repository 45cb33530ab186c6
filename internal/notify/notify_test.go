package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"caisse/internal/model"
	"caisse/internal/outbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recorder) channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Channel)
	}
	return out
}

func row(t *testing.T, eventType, actor, requester string) *model.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"type":      eventType,
		"aggregate": "funding",
		"reference": "FUND/2025/03/0007",
		"actor":     actor,
		"data":      map[string]interface{}{"requested_by": requester, "amount": "50000"},
	})
	require.NoError(t, err)
	return &model.OutboxEvent{Topic: model.TopicNotify, EventType: eventType, Payload: string(payload)}
}

func TestRouter_Channels(t *testing.T) {
	router := NewRouter(DefaultRoutes("finance"), nil, zap.NewNop())

	tests := []struct {
		name  string
		event string
		want  []string
	}{
		{name: "funding step", event: "funding.pre_approved", want: []string{"finance"}},
		{name: "rejection reaches requester", event: "payment_request.rejected", want: []string{"finance", "user:awa"}},
		{name: "approval reaches requester", event: "funding.approved", want: []string{"finance", "user:awa"}},
		{name: "refused cash reaches the payer", event: "payment.refused_insufficient_funds", want: []string{"finance", "user:moussa"}},
		{name: "ledger is silent", event: "ledger.credited", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, router.Channels(tt.event, "awa", "moussa"))
		})
	}
}

func TestRouter_ChannelsSkipsEmptyRequester(t *testing.T) {
	router := NewRouter(DefaultRoutes("finance"), nil, zap.NewNop())
	assert.Equal(t, []string{"finance"}, router.Channels("order.rejected", "", "moussa"))
}

func TestRouter_Handle(t *testing.T) {
	rec := &recorder{}
	router := NewRouter(DefaultRoutes("finance"), rec, zap.NewNop())

	require.NoError(t, router.Handle(context.Background(), row(t, "funding.rejected", "moussa", "awa")))

	assert.ElementsMatch(t, []string{"finance", "user:awa"}, rec.channels())
	assert.Equal(t, "FUND/2025/03/0007", rec.sent[0].EntityID)
	assert.Equal(t, "funding.rejected", rec.sent[0].Event)
}

func TestRouter_HandleInvalidPayload(t *testing.T) {
	router := NewRouter(DefaultRoutes("finance"), &recorder{}, zap.NewNop())
	err := router.Handle(context.Background(), &model.OutboxEvent{Payload: "{not json"})
	assert.ErrorIs(t, err, outbox.ErrInvalidEvent)
}

func TestRouter_HandleReportsDeliveryFailure(t *testing.T) {
	router := NewRouter(DefaultRoutes("finance"), &recorder{err: errors.New("chat down")}, zap.NewNop())
	err := router.Handle(context.Background(), row(t, "funding.pre_approved", "moussa", "awa"))
	assert.ErrorContains(t, err, "chat down")
}

func TestGuarded_TimeoutAndBreaker(t *testing.T) {
	slow := NotifierFunc(func(ctx context.Context, n Notification) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g := Guarded(slow, BreakerConfig{Name: "chat", Timeout: 10 * time.Millisecond, ConsecutiveFailures: 2, OpenFor: time.Minute}, zap.NewNop())

	n := Notification{Channel: "finance"}
	assert.ErrorIs(t, g.Notify(context.Background(), n), context.DeadlineExceeded)
	assert.ErrorIs(t, g.Notify(context.Background(), n), context.DeadlineExceeded)
	assert.ErrorIs(t, g.Notify(context.Background(), n), ErrUnavailable)
}

func TestFanOut(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("boom")}

	err := FanOut{ok, failing}.Notify(context.Background(), Notification{Channel: "finance"})

	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []string{"finance"}, ok.channels())
}
