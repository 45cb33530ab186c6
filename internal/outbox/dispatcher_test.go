package outbox

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"
	"caisse/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T, cfg Config) (*gorm.DB, repository.OutboxRepository, *HandlerRegistry, *Dispatcher) {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.NewOutboxRepository(db)
	registry := NewHandlerRegistry()
	return db, repo, registry, NewDispatcher(repo, registry, zap.NewNop(), cfg)
}

func enqueue(t *testing.T, repo repository.OutboxRepository, topic string) *model.OutboxEvent {
	t.Helper()
	event := &model.OutboxEvent{
		Topic:       topic,
		EventType:   "payment.recorded",
		Aggregate:   string(model.KindPaymentRequest),
		AggregateID: "PAY/2025/01/0001",
		Payload:     `{"type":"payment.recorded"}`,
		Status:      model.OutboxPending,
		AvailableAt: time.Now().UTC().Add(-time.Second),
	}
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func reload(t *testing.T, db *gorm.DB, event *model.OutboxEvent) model.OutboxEvent {
	t.Helper()
	var row model.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	return row
}

func TestDispatchOnce_PublishesHandledEvents(t *testing.T) {
	db, repo, registry, dispatcher := setup(t, Config{})
	var calls int32
	require.NoError(t, registry.Register(model.TopicNotify, func(ctx context.Context, event *model.OutboxEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	event := enqueue(t, repo, model.TopicNotify)

	res := dispatcher.DispatchOnce(context.Background())

	assert.Equal(t, 1, res.Published)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	row := reload(t, db, event)
	assert.Equal(t, model.OutboxPublished, row.Status)
	assert.NotNil(t, row.PublishedAt)

	// Published events are not delivered again.
	res = dispatcher.DispatchOnce(context.Background())
	assert.Equal(t, 0, res.Processed)
}

func TestDispatchOnce_RetriesThenGivesUp(t *testing.T) {
	db, repo, registry, dispatcher := setup(t, Config{MaxAttempts: 2, RetryBase: time.Millisecond, RetryMax: time.Millisecond})
	require.NoError(t, registry.Register(model.TopicSync, func(ctx context.Context, event *model.OutboxEvent) error {
		return errors.New("store unavailable")
	}))
	event := enqueue(t, repo, model.TopicSync)

	res := dispatcher.DispatchOnce(context.Background())
	assert.Equal(t, 1, res.Failed)
	row := reload(t, db, event)
	assert.Equal(t, model.OutboxFailed, row.Status)
	assert.Equal(t, 1, row.Attempts)
	assert.Contains(t, row.LastError, "store unavailable")

	time.Sleep(5 * time.Millisecond)
	res = dispatcher.DispatchOnce(context.Background())
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, reload(t, db, event).Attempts)

	time.Sleep(5 * time.Millisecond)
	res = dispatcher.DispatchOnce(context.Background())
	assert.Equal(t, 0, res.Processed, "exhausted events are not claimed")

	reset, err := repo.ResetFailed(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)
	assert.Equal(t, model.OutboxPending, reload(t, db, event).Status)
}

func TestDispatchOnce_DeferKeepsAttempts(t *testing.T) {
	db, repo, registry, dispatcher := setup(t, Config{})
	until := time.Now().UTC().Add(time.Hour)
	require.NoError(t, registry.Register(model.TopicSync, func(ctx context.Context, event *model.OutboxEvent) error {
		return Defer(until)
	}))
	event := enqueue(t, repo, model.TopicSync)

	res := dispatcher.DispatchOnce(context.Background())

	assert.Equal(t, 1, res.Deferred)
	row := reload(t, db, event)
	assert.Equal(t, model.OutboxPending, row.Status)
	assert.Equal(t, 0, row.Attempts)
	assert.WithinDuration(t, until, row.AvailableAt, time.Second)
	assert.Equal(t, 0, dispatcher.DispatchOnce(context.Background()).Processed)
}

func TestDispatchOnce_PermanentAndInvalid(t *testing.T) {
	db, repo, registry, dispatcher := setup(t, Config{MaxAttempts: 5})
	require.NoError(t, registry.Register(model.TopicSync, func(ctx context.Context, event *model.OutboxEvent) error {
		return Permanent(errors.New("sync failed after retries"))
	}))
	failed := enqueue(t, repo, model.TopicSync)
	orphan := enqueue(t, repo, "unknown")

	res := dispatcher.DispatchOnce(context.Background())

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Invalid)

	row := reload(t, db, failed)
	assert.Equal(t, model.OutboxFailed, row.Status)
	assert.Equal(t, 5, row.Attempts)
	assert.Equal(t, model.OutboxInvalid, reload(t, db, orphan).Status)
}

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	noop := func(ctx context.Context, event *model.OutboxEvent) error { return nil }

	require.NoError(t, registry.Register(model.TopicNotify, noop))
	assert.ErrorIs(t, registry.Register(model.TopicNotify, noop), ErrHandlerAlreadyRegistered)
	assert.ErrorIs(t, registry.Register(" ", noop), ErrTopicRequired)
	assert.ErrorIs(t, registry.Register(model.TopicSync, nil), ErrEventHandlerRequired)
	assert.ErrorIs(t, registry.Handle(context.Background(), &model.OutboxEvent{Topic: "other"}), ErrHandlerNotRegistered)
}

func TestRun_StopsOnCancel(t *testing.T) {
	_, repo, registry, dispatcher := setup(t, Config{Interval: 10 * time.Millisecond})
	delivered := make(chan struct{}, 1)
	require.NoError(t, registry.Register(model.TopicNotify, func(ctx context.Context, event *model.OutboxEvent) error {
		delivered <- struct{}{}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	enqueue(t, repo, model.TopicNotify)
	dispatcher.Kick()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestStop_WaitsForCycleInFlight(t *testing.T) {
	_, repo, registry, dispatcher := setup(t, Config{Interval: time.Hour})
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, registry.Register(model.TopicNotify, func(ctx context.Context, event *model.OutboxEvent) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}))
	enqueue(t, repo, model.TopicNotify)

	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(context.Background()) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not start")
	}

	stopped := make(chan struct{})
	go func() {
		dispatcher.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a cycle was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.True(t, finished.Load())
	assert.NoError(t, <-done)
}

func TestRun_AfterStopReturnsImmediately(t *testing.T) {
	_, _, _, dispatcher := setup(t, Config{Interval: time.Hour})
	dispatcher.Stop()

	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept going after Stop")
	}
}
