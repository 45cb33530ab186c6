package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"caisse/internal/mirror"
	"caisse/internal/model"
	"caisse/internal/repository"
)

type mirrorSource struct {
	funding         repository.FundingRepository
	paymentRequests repository.PaymentRequestRepository
	orders          repository.OrderRepository
	ledger          repository.LedgerRepository
}

// NewMirrorSource exposes request and ledger state to the mirror syncer.
func NewMirrorSource(
	funding repository.FundingRepository,
	paymentRequests repository.PaymentRequestRepository,
	orders repository.OrderRepository,
	ledger repository.LedgerRepository,
) mirror.Source {
	return &mirrorSource{funding: funding, paymentRequests: paymentRequests, orders: orders, ledger: ledger}
}

func (m *mirrorSource) Snapshot(ctx context.Context, kind, reference string) (mirror.Entity, error) {
	switch model.RequestKind(kind) {
	case model.KindFunding:
		f, err := m.funding.FindByReference(ctx, reference)
		if err != nil {
			return mirror.Entity{}, notFound("funding request", reference, err)
		}
		cells := headerCells(&f.RequestHeader)
		cells["status"] = string(f.Status)
		cells["reason"] = f.Reason
		cells["disbursement_method"] = f.DisbursementMethod
		cells["disbursement_details"] = f.DisbursementDetails
		cells["issue_reported"] = strconv.FormatBool(f.IssueReported)
		cells["approved_by"] = f.ApprovedBy
		cells["rejection_reason"] = f.RejectionReason
		return mirror.Entity{
			Row:          mirror.Row{Sheet: mirror.SheetFunding, Key: reference, Cells: cells},
			LastSyncedAt: f.LastSyncedAt,
		}, nil

	case model.KindPaymentRequest:
		p, err := m.paymentRequests.FindByReference(ctx, reference)
		if err != nil {
			return mirror.Entity{}, notFound("payment request", reference, err)
		}
		cells := payableCells(p)
		cells["title"] = p.Title
		cells["beneficiary"] = p.Beneficiary
		return mirror.Entity{
			Row:          mirror.Row{Sheet: mirror.SheetPaymentRequests, Key: reference, Cells: cells},
			LastSyncedAt: p.LastSyncedAt,
		}, nil

	case model.KindOrder:
		o, err := m.orders.FindByReference(ctx, reference)
		if err != nil {
			return mirror.Entity{}, notFound("order", reference, err)
		}
		cells := payableCells(o)
		cells["title"] = o.Title
		cells["proformas"] = strconv.Itoa(len(o.Proformas))
		for _, pf := range o.Proformas {
			if pf.Validated {
				cells["supplier"] = pf.Supplier
			}
		}
		return mirror.Entity{
			Row:          mirror.Row{Sheet: mirror.SheetOrders, Key: reference, Cells: cells},
			LastSyncedAt: o.LastSyncedAt,
		}, nil
	}
	return mirror.Entity{}, model.Invalid("kind", "%q is not a request kind", kind)
}

func headerCells(h *model.RequestHeader) map[string]string {
	return map[string]string{
		"reference":    h.Reference,
		"amount":       h.Amount.String(),
		"currency":     string(h.Currency),
		"requested_by": h.RequestedBy,
	}
}

func payableCells(p model.Payable) map[string]string {
	h, st := p.Header(), p.Settlement()
	cells := headerCells(h)
	cells["status"] = string(st.Status)
	cells["payment_status"] = string(st.PaymentStatus)
	cells["amount_paid"] = st.AmountPaid.String()
	cells["payments"] = strconv.Itoa(len(p.PaymentList()))
	cells["block_payment"] = strconv.FormatBool(st.BlockPayment)
	if remaining, err := model.Remaining(p); err == nil {
		cells["remaining"] = remaining.String()
	}
	return cells
}

func (m *mirrorSource) MarkSynced(ctx context.Context, kind, reference string, at time.Time) error {
	switch model.RequestKind(kind) {
	case model.KindFunding:
		return m.funding.MarkSynced(ctx, reference, at)
	case model.KindPaymentRequest:
		return m.paymentRequests.MarkSynced(ctx, reference, at)
	case model.KindOrder:
		return m.orders.MarkSynced(ctx, reference, at)
	}
	return model.Invalid("kind", "%q is not a request kind", kind)
}

func (m *mirrorSource) LedgerSnapshot(ctx context.Context, reference string) (mirror.Row, string, error) {
	if reference == "" {
		return mirror.Row{}, "", model.Invalid("reference", "ledger snapshot needs the related request")
	}
	balances, err := m.ledger.ListBalances(ctx)
	if err != nil {
		return mirror.Row{}, "", fmt.Errorf("failed to load ledger balances: %w", err)
	}
	state, err := m.ledger.GetState(ctx)
	if err != nil {
		return mirror.Row{}, "", fmt.Errorf("failed to load ledger state: %w", err)
	}

	cells := map[string]string{"related_request_id": reference}
	for _, b := range balances {
		cells[string(b.Currency)] = b.Balance.String()
	}
	return mirror.Row{Sheet: mirror.SheetLedger, Key: reference, Cells: cells}, state.LatestSyncedRequestID, nil
}

func (m *mirrorSource) SetLatestLedgerRow(ctx context.Context, reference string, at time.Time) error {
	return m.ledger.SetLatestSynced(ctx, reference, at)
}
