package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentDTO is one payment as submitted by finance.
type PaymentDTO struct {
	Mode        model.PaymentMode `json:"mode" binding:"required"`
	Amount      string            `json:"amount_paid" binding:"required"`
	Proofs      []string          `json:"proofs"`
	ModeDetails map[string]string `json:"mode_details"`
}

// PaymentOutcome is the payable as it stands after a reconciliation step.
type PaymentOutcome struct {
	Reference     string              `json:"reference"`
	Kind          model.RequestKind   `json:"kind"`
	Status        model.PayableStatus `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Currency      model.Currency      `json:"currency"`
	TotalDue      decimal.Decimal     `json:"total_due"`
	AmountPaid    decimal.Decimal     `json:"amount_paid"`
	Remaining     decimal.Decimal     `json:"remaining"`
	BlockPayment  bool                `json:"block_payment"`
	Payment       *model.Payment      `json:"payment,omitempty"`
}

// PaymentService reconciles payments against orders and payment requests.
type PaymentService interface {
	RecordPayment(ctx context.Context, reference, actor string, req PaymentDTO) (*PaymentOutcome, error)
	EditPayment(ctx context.Context, reference string, index int, actor string, req PaymentDTO) (*PaymentOutcome, error)
	ReportIssue(ctx context.Context, reference, actor, reason string) (*PaymentOutcome, error)
}

type paymentService struct {
	txManager repository.TransactionManager
	payments  repository.PaymentRepository
	stores    map[model.RequestKind]payableStore
	history   repository.HistoryRepository
	ledger    LedgerService
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewPaymentService(
	txManager repository.TransactionManager,
	payments repository.PaymentRepository,
	paymentRequests repository.PaymentRequestRepository,
	orders repository.OrderRepository,
	history repository.HistoryRepository,
	ledger LedgerService,
	events EventPublisher,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		txManager: txManager,
		payments:  payments,
		stores: map[model.RequestKind]payableStore{
			model.KindPaymentRequest: paymentRequestStore{repo: paymentRequests},
			model.KindOrder:          orderStore{repo: orders},
		},
		history: history,
		ledger:  ledger,
		events:  events,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *paymentService) storeFor(reference string) (payableStore, string, error) {
	id, err := model.ParseRequestID(reference)
	if err != nil {
		return nil, "", err
	}
	store, ok := s.stores[id.Kind]
	if !ok {
		return nil, "", model.Invalid("id", "%s requests do not take payments", id.Kind)
	}
	return store, id.String(), nil
}

func (s *paymentService) buildPayment(req PaymentDTO, currency model.Currency, actor string) (model.Payment, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return model.Payment{}, model.Invalid("amount_paid", "%q is not a number", req.Amount)
	}
	payment := model.Payment{
		Mode:        req.Mode,
		Amount:      amount,
		Currency:    currency,
		Proofs:      req.Proofs,
		ModeDetails: req.ModeDetails,
		SubmittedBy: actor,
		SubmittedAt: s.now(),
	}
	if err := payment.Validate(); err != nil {
		return model.Payment{}, err
	}
	return payment, nil
}

// RecordPayment appends a payment. A cash payment debits the ledger in the same transaction,
// so either both the debit and the payment exist or neither does.
func (s *paymentService) RecordPayment(ctx context.Context, reference, actor string, req PaymentDTO) (*PaymentOutcome, error) {
	store, ref, err := s.storeFor(reference)
	if err != nil {
		return nil, err
	}

	var (
		outcome *PaymentOutcome
		header  *model.RequestHeader
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := store.findForUpdate(txCtx, ref)
		if err != nil {
			return err
		}
		h, st := p.Header(), p.Settlement()
		header = h

		if !st.Status.AcceptsPayments() {
			return refused(ref, "record a payment on", string(st.Status), ErrInvalidState)
		}
		if st.BlockPayment {
			return refused(ref, "record a payment on", string(st.Status), ErrPaymentBlocked)
		}

		due, err := p.TotalDue()
		if err != nil {
			return refused(ref, "record a payment on", string(st.Status), fmt.Errorf("%w: %v", ErrInvalidState, err))
		}
		payment, err := s.buildPayment(req, due.Currency, actor)
		if err != nil {
			return err
		}

		remaining := due.Amount.Sub(st.AmountPaid)
		if payment.Amount.GreaterThan(remaining) {
			return &RemainingError{Reference: ref, Remaining: remaining, Requested: payment.Amount}
		}

		if cash := payment.CashAmount(); cash.IsPositive() {
			if _, err := s.ledger.Debit(txCtx, LedgerMovement{
				Currency:         due.Currency,
				Amount:           cash,
				RelatedRequestID: ref,
				Details:          fmt.Sprintf("cash payment #%d", len(p.PaymentList())+1),
				Actor:            actor,
			}); err != nil {
				return err
			}
		}

		payment.RequestReference = ref
		payment.Position = len(p.PaymentList())
		if err := s.payments.Append(txCtx, &payment); err != nil {
			return fmt.Errorf("failed to append payment: %w", err)
		}

		s.settle(st, st.AmountPaid.Add(payment.Amount), due.Amount)
		if err := store.saveState(txCtx, p); err != nil {
			return fmt.Errorf("failed to update payment state: %w", err)
		}

		if err := appendHistory(txCtx, s.history, store.kind(), ref, model.StagePaymentRecorded, actor, map[string]interface{}{
			"index":       payment.Position,
			"mode":        payment.Mode,
			"amount_paid": payment.Amount.String(),
			"remaining":   due.Amount.Sub(st.AmountPaid).String(),
		}); err != nil {
			return err
		}
		if err := s.publish(txCtx, EventPaymentRecorded, store.kind(), h, st, due, actor, map[string]interface{}{
			"index": payment.Position, "mode": payment.Mode, "amount_paid": payment.Amount.String(),
		}); err != nil {
			return err
		}

		outcome = buildOutcome(store.kind(), h, st, due, &payment)
		return nil
	})
	if err != nil {
		s.reportRefusal(ctx, store.kind(), header, actor, -1, err)
		return nil, err
	}

	s.events.Flush()
	s.logger.Info("payment recorded",
		zap.String("request_id", ref),
		zap.String("amount", outcome.Payment.Amount.String()),
		zap.String("payment_status", string(outcome.PaymentStatus)),
	)
	return outcome, nil
}

// EditPayment replaces payment #index in place. The ledger moves by the difference in cash
// drawn, and the correction clears any payment block.
func (s *paymentService) EditPayment(ctx context.Context, reference string, index int, actor string, req PaymentDTO) (*PaymentOutcome, error) {
	store, ref, err := s.storeFor(reference)
	if err != nil {
		return nil, err
	}

	var (
		outcome *PaymentOutcome
		header  *model.RequestHeader
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := store.findForUpdate(txCtx, ref)
		if err != nil {
			return err
		}
		h, st := p.Header(), p.Settlement()
		header = h

		if !st.Status.AcceptsPayments() {
			return refused(ref, "edit a payment on", string(st.Status), ErrInvalidState)
		}
		payments := p.PaymentList()
		if index < 0 || index >= len(payments) {
			return fmt.Errorf("payment #%d on %s: %w", index, ref, ErrNotFound)
		}
		old := payments[index]

		due, err := p.TotalDue()
		if err != nil {
			return refused(ref, "edit a payment on", string(st.Status), fmt.Errorf("%w: %v", ErrInvalidState, err))
		}
		updated, err := s.buildPayment(req, due.Currency, actor)
		if err != nil {
			return err
		}

		othersPaid := st.AmountPaid.Sub(old.Amount)
		remaining := due.Amount.Sub(othersPaid)
		if updated.Amount.GreaterThan(remaining) {
			return &RemainingError{Reference: ref, Remaining: remaining, Requested: updated.Amount}
		}

		// Cash given back to the box is positive, extra cash drawn is negative.
		delta := old.CashAmount().Sub(updated.CashAmount())
		if _, err := s.ledger.Adjust(txCtx, LedgerMovement{
			Currency:         due.Currency,
			Amount:           delta,
			RelatedRequestID: ref,
			Details:          fmt.Sprintf("payment #%d corrected", index+1),
			Actor:            actor,
		}); err != nil {
			return err
		}

		updated.ID = old.ID
		updated.RequestReference = ref
		updated.Position = old.Position
		if err := s.payments.Replace(txCtx, &updated); err != nil {
			return fmt.Errorf("failed to replace payment: %w", err)
		}

		s.settle(st, othersPaid.Add(updated.Amount), due.Amount)
		st.BlockPayment = false
		st.BlockReason = ""
		if err := store.saveState(txCtx, p); err != nil {
			return fmt.Errorf("failed to update payment state: %w", err)
		}

		if err := appendHistory(txCtx, s.history, store.kind(), ref, model.StagePaymentEdited, actor, map[string]interface{}{
			"index":      index,
			"old_amount": old.Amount.String(),
			"old_mode":   old.Mode,
			"new_amount": updated.Amount.String(),
			"new_mode":   updated.Mode,
		}); err != nil {
			return err
		}
		if err := s.publish(txCtx, EventPaymentEdited, store.kind(), h, st, due, actor, map[string]interface{}{
			"index": index, "amount_paid": updated.Amount.String(),
		}); err != nil {
			return err
		}

		outcome = buildOutcome(store.kind(), h, st, due, &updated)
		return nil
	})
	if err != nil {
		s.reportRefusal(ctx, store.kind(), header, actor, index, err)
		return nil, err
	}

	s.events.Flush()
	return outcome, nil
}

// ReportIssue flags the latest payment as problematic and blocks further payments.
func (s *paymentService) ReportIssue(ctx context.Context, reference, actor, reason string) (*PaymentOutcome, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, model.Invalid("reason", "is required")
	}
	store, ref, err := s.storeFor(reference)
	if err != nil {
		return nil, err
	}

	var outcome *PaymentOutcome
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := store.findForUpdate(txCtx, ref)
		if err != nil {
			return err
		}
		h, st := p.Header(), p.Settlement()
		if len(p.PaymentList()) == 0 {
			return refused(ref, "report a payment issue on", string(st.Status), ErrInvalidState)
		}
		due, err := p.TotalDue()
		if err != nil {
			return refused(ref, "report a payment issue on", string(st.Status), fmt.Errorf("%w: %v", ErrInvalidState, err))
		}

		st.BlockPayment = true
		st.BlockReason = reason
		if err := store.saveState(txCtx, p); err != nil {
			return fmt.Errorf("failed to block payments: %w", err)
		}

		latest := len(p.PaymentList()) - 1
		if err := appendHistory(txCtx, s.history, store.kind(), ref, model.StagePaymentIssue, actor,
			map[string]interface{}{"index": latest, "reason": reason}); err != nil {
			return err
		}
		if err := s.publish(txCtx, EventPaymentIssueReported, store.kind(), h, st, due, actor,
			map[string]interface{}{"index": latest, "reason": reason}); err != nil {
			return err
		}

		outcome = buildOutcome(store.kind(), h, st, due, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Flush()
	return outcome, nil
}

// reportRefusal tells finance about a cash movement the ledger could not cover. The payment
// transaction has rolled back by then, so the event is written in a transaction of its own.
// index is the edited payment, or -1 for a new one.
func (s *paymentService) reportRefusal(ctx context.Context, kind model.RequestKind, h *model.RequestHeader, actor string, index int, cause error) {
	var funds *FundsError
	if h == nil || !errors.As(cause, &funds) {
		return
	}

	extra := map[string]interface{}{
		"balance":   funds.Balance.String(),
		"requested": funds.Requested.String(),
	}
	if index >= 0 {
		extra["index"] = index
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.events.Publish(txCtx, DomainEvent{
			Type:      EventPaymentRefusedFunds,
			Aggregate: string(kind),
			Reference: h.Reference,
			Actor:     actor,
			Data:      requesterData(h, extra),
		})
	})
	if err != nil {
		s.logger.Error("failed to publish refused payment",
			zap.String("request_id", h.Reference),
			zap.Error(err),
		)
		return
	}

	s.events.Flush()
	s.logger.Warn("cash payment refused",
		zap.String("request_id", h.Reference),
		zap.String("actor", actor),
		zap.String("balance", funds.Balance.String()),
		zap.String("requested", funds.Requested.String()),
	)
}

// settle recomputes the derived amounts and statuses from the new paid total.
func (s *paymentService) settle(st *model.PaymentState, paid, due decimal.Decimal) {
	st.AmountPaid = paid
	st.PaymentStatus = model.DerivePaymentStatus(paid, due)
	st.Status = model.WorkflowStatusFor(st.PaymentStatus)
}

func buildOutcome(kind model.RequestKind, h *model.RequestHeader, st *model.PaymentState, due model.Money, payment *model.Payment) *PaymentOutcome {
	return &PaymentOutcome{
		Reference:     h.Reference,
		Kind:          kind,
		Status:        st.Status,
		PaymentStatus: st.PaymentStatus,
		Currency:      due.Currency,
		TotalDue:      due.Amount,
		AmountPaid:    st.AmountPaid,
		Remaining:     due.Amount.Sub(st.AmountPaid),
		BlockPayment:  st.BlockPayment,
		Payment:       payment,
	}
}

func (s *paymentService) publish(txCtx context.Context, eventType string, kind model.RequestKind, h *model.RequestHeader, st *model.PaymentState, due model.Money, actor string, extra map[string]interface{}) error {
	data := requesterData(h, extra)
	data["payment_status"] = st.PaymentStatus
	data["amount_due"] = due.Amount.String()
	data["remaining"] = due.Amount.Sub(st.AmountPaid).String()
	return s.events.Publish(txCtx, DomainEvent{
		Type:      eventType,
		Aggregate: string(kind),
		Reference: h.Reference,
		Actor:     actor,
		Data:      data,
	})
}
