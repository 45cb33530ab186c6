package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"caisse/internal/mirror"
	"caisse/internal/model"
	"caisse/internal/notify"
	"caisse/internal/outbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) channels(event string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.sent {
		if n.Event == event {
			out = append(out, n.Channel)
		}
	}
	return out
}

type failingStore struct{}

func (failingStore) FindRow(context.Context, string, string) (mirror.Row, error) {
	return mirror.Row{}, errors.New("quota exceeded")
}

func (failingStore) UpsertRow(context.Context, mirror.Row) error {
	return errors.New("quota exceeded")
}

func newMirrorStore(t *testing.T) *mirror.SQLiteStore {
	t.Helper()
	store, err := mirror.OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func (h *harness) syncer(store mirror.RowStore, debounce time.Duration) *mirror.Syncer {
	source := NewMirrorSource(h.fundingRepo, h.prRepo, h.orderRepo, h.ledgerRepo)
	return mirror.NewSyncer(store, source, nil, mirror.Config{
		Debounce: debounce, Attempts: 1, BackoffBase: time.Millisecond, Timeout: time.Second,
	}, zap.NewNop())
}

func (h *harness) approvedFunding(t *testing.T, amount string) string {
	t.Helper()
	ctx := context.Background()
	f, err := h.funding.Create(ctx, "alice", CreateFundingDTO{Amount: amount, Reason: "Petty cash"})
	require.NoError(t, err)
	_, err = h.funding.PreApprove(ctx, f.Reference, "bob")
	require.NoError(t, err)
	_, err = h.funding.SubmitDetails(ctx, f.Reference, "carol", FundingDetailsDTO{Method: "transfer", Details: "BOA CI001"})
	require.NoError(t, err)
	_, err = h.funding.FinalApprove(ctx, f.Reference, "carol")
	require.NoError(t, err)
	return f.Reference
}

func syncEvent(aggregate, reference string) *model.OutboxEvent {
	return &model.OutboxEvent{Topic: model.TopicSync, Aggregate: aggregate, AggregateID: reference}
}

func TestSubscribers_DispatchNotifiesAndMirrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := newMirrorStore(t)
	recorder := &recordingNotifier{}

	registry := outbox.NewHandlerRegistry()
	router := notify.NewRouter(notify.DefaultRoutes("finance"), recorder, zap.NewNop())
	require.NoError(t, RegisterSubscribers(registry, router, h.syncer(store, time.Minute)))
	dispatcher := outbox.NewDispatcher(h.outbox, registry, zap.NewNop(), outbox.Config{})

	f, err := h.funding.Create(ctx, "alice", CreateFundingDTO{Amount: "25000 XOF", Reason: "Fuel"})
	require.NoError(t, err)

	res := dispatcher.DispatchOnce(ctx)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Published)
	assert.Equal(t, []string{"finance"}, recorder.channels(EventFundingCreated))

	row, err := store.FindRow(ctx, mirror.SheetFunding, f.Reference)
	require.NoError(t, err)
	assert.Equal(t, string(model.FundingPending), row.Cells["status"])
	assert.Equal(t, "XOF", row.Cells["currency"])

	synced, err := h.funding.Get(ctx, f.Reference)
	require.NoError(t, err)
	require.NotNil(t, synced.LastSyncedAt)

	// a second change inside the debounce window is notified but its sync waits
	_, err = h.funding.Reject(ctx, f.Reference, "bob", "duplicate")
	require.NoError(t, err)

	res = dispatcher.DispatchOnce(ctx)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 1, res.Deferred)
	assert.ElementsMatch(t, []string{"finance", notify.UserChannel("alice")}, recorder.channels(EventFundingRejected))

	row, err = store.FindRow(ctx, mirror.SheetFunding, f.Reference)
	require.NoError(t, err)
	assert.Equal(t, string(model.FundingPending), row.Cells["status"])

	counts, err := h.outbox.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.OutboxPending])
	assert.Equal(t, int64(3), counts[model.OutboxPublished])
}

func TestSyncHandler_WritesLatestState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := newMirrorStore(t)
	handle := SyncHandler(h.syncer(store, 0))

	ref := h.validatedPaymentRequest(t, "50000 XOF")
	require.NoError(t, handle(ctx, syncEvent(string(model.KindPaymentRequest), ref)))

	_, err := h.payments.RecordPayment(ctx, ref, "dave", transfer("20000"))
	require.NoError(t, err)
	require.NoError(t, handle(ctx, syncEvent(string(model.KindPaymentRequest), ref)))

	row, err := store.FindRow(ctx, mirror.SheetPaymentRequests, ref)
	require.NoError(t, err)
	assert.Equal(t, string(model.PaymentPartiallyPaid), row.Cells["payment_status"])
	assert.Equal(t, "30000", row.Cells["remaining"])
	assert.Equal(t, "1", row.Cells["payments"])
}

func TestSyncHandler_DebouncedSyncIsDeferred(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	handle := SyncHandler(h.syncer(newMirrorStore(t), time.Minute))

	f, err := h.funding.Create(ctx, "alice", CreateFundingDTO{Amount: "1000 XOF", Reason: "Taxi"})
	require.NoError(t, err)
	require.NoError(t, handle(ctx, syncEvent(string(model.KindFunding), f.Reference)))

	err = handle(ctx, syncEvent(string(model.KindFunding), f.Reference))
	var deferred *outbox.DeferredError
	require.True(t, errors.As(err, &deferred), "got %v", err)
	assert.True(t, deferred.Until.After(time.Now()))
}

func TestSyncHandler_UnknownReferenceIsInvalid(t *testing.T) {
	h := newHarness(t)
	handle := SyncHandler(h.syncer(newMirrorStore(t), 0))

	err := handle(context.Background(), syncEvent(string(model.KindOrder), "CMD/2025/01/0404"))
	assert.ErrorIs(t, err, outbox.ErrInvalidEvent)

	err = handle(context.Background(), syncEvent("invoice", "INV/2025/01/0001"))
	assert.ErrorIs(t, err, outbox.ErrInvalidEvent)
}

func TestSyncHandler_StoreFailureIsPermanent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	handle := SyncHandler(h.syncer(failingStore{}, 0))

	f, err := h.funding.Create(ctx, "alice", CreateFundingDTO{Amount: "1000 XOF", Reason: "Taxi"})
	require.NoError(t, err)

	err = handle(ctx, syncEvent(string(model.KindFunding), f.Reference))
	var permanent *outbox.PermanentError
	require.True(t, errors.As(err, &permanent), "got %v", err)
	assert.ErrorIs(t, err, mirror.ErrSyncFailure)

	// domain state is untouched by a failed mirror
	got, err := h.funding.Get(ctx, f.Reference)
	require.NoError(t, err)
	assert.Nil(t, got.LastSyncedAt)
	assert.Equal(t, model.FundingPending, got.Status)
}

func TestSyncHandler_LedgerSnapshotMovesLatestFlag(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := newMirrorStore(t)
	handle := SyncHandler(h.syncer(store, 0))

	first := h.approvedFunding(t, "40000 XOF")
	require.NoError(t, handle(ctx, syncEvent(model.AggregateLedger, first)))

	row, err := store.FindRow(ctx, mirror.SheetLedger, first)
	require.NoError(t, err)
	assert.Equal(t, "true", row.Cells["latest"])
	assert.Equal(t, "40000", row.Cells["XOF"])

	second := h.approvedFunding(t, "10 EUR")
	require.NoError(t, handle(ctx, syncEvent(model.AggregateLedger, second)))

	row, err = store.FindRow(ctx, mirror.SheetLedger, second)
	require.NoError(t, err)
	assert.Equal(t, "true", row.Cells["latest"])
	assert.Equal(t, "10", row.Cells["EUR"])

	row, err = store.FindRow(ctx, mirror.SheetLedger, first)
	require.NoError(t, err)
	assert.Equal(t, "false", row.Cells["latest"])

	state, err := h.ledgerRepo.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, state.LatestSyncedRequestID)

	rows, err := store.Rows(ctx, mirror.SheetLedger)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	err = handle(ctx, syncEvent(model.AggregateLedger, ""))
	assert.ErrorIs(t, err, outbox.ErrInvalidEvent)
}

func TestSubscribers_RefusedCashReachesFinanceAndPayer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	recorder := &recordingNotifier{}

	registry := outbox.NewHandlerRegistry()
	router := notify.NewRouter(notify.DefaultRoutes("finance"), recorder, zap.NewNop())
	require.NoError(t, RegisterSubscribers(registry, router, h.syncer(newMirrorStore(t), 0)))
	dispatcher := outbox.NewDispatcher(h.outbox, registry, zap.NewNop(), outbox.Config{})

	h.credit(t, model.CurrencyXOF, 5000)
	ref := h.validatedPaymentRequest(t, "50000 XOF")
	dispatcher.DispatchOnce(ctx)

	_, err := h.payments.RecordPayment(ctx, ref, "dave", cash("20000"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	res := dispatcher.DispatchOnce(ctx)
	assert.Equal(t, 2, res.Processed)
	assert.ElementsMatch(t, []string{"finance", notify.UserChannel("dave")}, recorder.channels(EventPaymentRefusedFunds))
	assert.Empty(t, recorder.channels(EventPaymentRecorded))
	assert.True(t, h.balance(t, model.CurrencyXOF).Equal(dec("5000")))
}
