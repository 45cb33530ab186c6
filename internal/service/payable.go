package service

import (
	"context"
	"fmt"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"
)

// payableStore lets the shared payable steps work on either table.
type payableStore interface {
	kind() model.RequestKind
	findForUpdate(ctx context.Context, reference string) (model.Payable, error)
	updateIf(ctx context.Context, p model.Payable, expect, updates map[string]interface{}) (bool, error)
	saveState(ctx context.Context, p model.Payable) error
}

type paymentRequestStore struct {
	repo repository.PaymentRequestRepository
}

func (s paymentRequestStore) kind() model.RequestKind { return model.KindPaymentRequest }

func (s paymentRequestStore) findForUpdate(ctx context.Context, reference string) (model.Payable, error) {
	p, err := s.repo.FindByReferenceForUpdate(ctx, reference)
	if err != nil {
		return nil, notFound("payment request", reference, err)
	}
	return p, nil
}

func (s paymentRequestStore) updateIf(ctx context.Context, p model.Payable, expect, updates map[string]interface{}) (bool, error) {
	return s.repo.UpdateIf(ctx, p.RowID(), expect, updates)
}

func (s paymentRequestStore) saveState(ctx context.Context, p model.Payable) error {
	return s.repo.SaveState(ctx, p.RowID(), *p.Settlement())
}

type orderStore struct {
	repo repository.OrderRepository
}

func (s orderStore) kind() model.RequestKind { return model.KindOrder }

func (s orderStore) findForUpdate(ctx context.Context, reference string) (model.Payable, error) {
	o, err := s.repo.FindByReferenceForUpdate(ctx, reference)
	if err != nil {
		return nil, notFound("order", reference, err)
	}
	return o, nil
}

func (s orderStore) updateIf(ctx context.Context, p model.Payable, expect, updates map[string]interface{}) (bool, error) {
	return s.repo.UpdateIf(ctx, p.RowID(), expect, updates)
}

func (s orderStore) saveState(ctx context.Context, p model.Payable) error {
	return s.repo.SaveState(ctx, p.RowID(), *p.Settlement())
}

// checkPayableDecision allows validate/reject only once, from Pending.
func checkPayableDecision(p model.Payable, action string) error {
	h, st := p.Header(), p.Settlement()
	if st.Status == model.PayablePending && !h.ApprovedOnce {
		return nil
	}
	return refused(h.Reference, action, string(st.Status), ErrAlreadyProcessed)
}

// decide applies validate or reject through a compare-and-set on (status, approved_once).
func decide(ctx context.Context, store payableStore, p model.Payable, action string, updates map[string]interface{}) error {
	if err := checkPayableDecision(p, action); err != nil {
		return err
	}
	ok, err := store.updateIf(ctx, p,
		map[string]interface{}{"status": model.PayablePending, "approved_once": false},
		updates)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", action, p.Header().Reference, err)
	}
	if !ok {
		return refused(p.Header().Reference, action, string(p.Settlement().Status), ErrAlreadyProcessed)
	}
	return nil
}

func validateUpdates(actor string, at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":         model.PayableValidated,
		"payment_status": model.PaymentPending,
		"approved_once":  true,
		"validated_by":   actor,
		"validated_at":   at,
	}
}

func rejectUpdates(actor, reason string, at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":           model.PayableRejected,
		"approved_once":    true,
		"rejected_by":      actor,
		"rejected_at":      at,
		"rejection_reason": reason,
	}
}

// cancelPayable closes a payable that has not received money yet.
func cancelPayable(ctx context.Context, store payableStore, p model.Payable, actor, reason string, at time.Time) error {
	h, st := p.Header(), p.Settlement()
	switch {
	case st.Status == model.PayableCancelled || st.Status == model.PayableRejected:
		return refused(h.Reference, "cancel", string(st.Status), ErrAlreadyProcessed)
	case st.Status == model.PayablePending:
	case st.Status == model.PayableValidated && st.AmountPaid.IsZero():
	default:
		return refused(h.Reference, "cancel", string(st.Status), ErrInvalidState)
	}

	ok, err := store.updateIf(ctx, p,
		map[string]interface{}{"status": st.Status},
		map[string]interface{}{
			"status":        model.PayableCancelled,
			"cancelled_by":  actor,
			"cancelled_at":  at,
			"cancel_reason": reason,
		})
	if err != nil {
		return fmt.Errorf("failed to cancel %s: %w", h.Reference, err)
	}
	if !ok {
		return refused(h.Reference, "cancel", string(st.Status), ErrAlreadyProcessed)
	}
	return nil
}

// newReference draws the next identifier for kind; ctx must carry a transaction.
func newReference(ctx context.Context, seq repository.SequenceRepository, kind model.RequestKind, at time.Time) (model.RequestID, error) {
	probe := model.NewRequestID(kind, at, 0)
	n, err := seq.Next(ctx, kind.Prefix(), probe.Period())
	if err != nil {
		return model.RequestID{}, fmt.Errorf("failed to allocate %s identifier: %w", kind.Prefix(), err)
	}
	return model.NewRequestID(kind, at, n), nil
}

// parseReference accepts only identifiers of the expected kind.
func parseReference(raw string, kind model.RequestKind) (string, error) {
	id, err := model.ParseRequestID(raw)
	if err != nil {
		return "", err
	}
	if id.Kind != kind {
		return "", model.Invalid("id", "%s is not a %s identifier", raw, kind)
	}
	return id.String(), nil
}

func requesterData(h *model.RequestHeader, extra map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"requested_by": h.RequestedBy,
		"amount":       h.Amount.String(),
		"currency":     h.Currency,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}
