package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProformaDTO struct {
	Supplier string `json:"supplier" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency"`
	FileURI  string `json:"file_uri"`
}

type CreateOrderDTO struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	Amount      string        `json:"amount" binding:"required"` // estimated total
	Currency    string        `json:"currency"`
	Proformas   []ProformaDTO `json:"proformas"`
}

type ValidateOrderDTO struct {
	ProformaID string `json:"proforma_id" binding:"required"`
}

type OrderService interface {
	Create(ctx context.Context, actor string, req CreateOrderDTO) (*model.Order, error)
	Get(ctx context.Context, reference string) (*model.Order, error)
	List(ctx context.Context, filter repository.RequestFilter) ([]model.Order, int64, error)
	AddProforma(ctx context.Context, reference, actor string, req ProformaDTO) (*model.Order, error)
	Validate(ctx context.Context, reference, actor, proformaID string) (*model.Order, error)
	Reject(ctx context.Context, reference, actor, reason string) (*model.Order, error)
	Cancel(ctx context.Context, reference, actor, reason string) (*model.Order, error)
}

type orderService struct {
	txManager repository.TransactionManager
	repo      repository.OrderRepository
	store     orderStore
	sequences repository.SequenceRepository
	history   repository.HistoryRepository
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	txManager repository.TransactionManager,
	repo repository.OrderRepository,
	sequences repository.SequenceRepository,
	history repository.HistoryRepository,
	events EventPublisher,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		txManager: txManager,
		repo:      repo,
		store:     orderStore{repo: repo},
		sequences: sequences,
		history:   history,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func buildProforma(reference, actor string, req ProformaDTO) (*model.Proforma, error) {
	if strings.TrimSpace(req.Supplier) == "" {
		return nil, model.Invalid("supplier", "is required")
	}
	money, err := parseAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	return &model.Proforma{
		OrderReference: reference,
		Supplier:       req.Supplier,
		Amount:         money.Amount,
		Currency:       money.Currency,
		FileURI:        req.FileURI,
		AddedBy:        actor,
	}, nil
}

func (s *orderService) Create(ctx context.Context, actor string, req CreateOrderDTO) (*model.Order, error) {
	money, err := parseAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.Invalid("title", "is required")
	}

	order := &model.Order{
		RequestHeader: model.RequestHeader{
			Kind:        model.KindOrder,
			Amount:      money.Amount,
			Currency:    money.Currency,
			RequestedBy: actor,
		},
		PaymentState: model.PaymentState{
			Status:        model.PayablePending,
			PaymentStatus: model.PaymentPending,
		},
		Title:       req.Title,
		Description: req.Description,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		id, err := newReference(txCtx, s.sequences, model.KindOrder, s.now())
		if err != nil {
			return err
		}
		order.Reference = id.String()

		if err := s.repo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for _, p := range req.Proformas {
			proforma, err := buildProforma(order.Reference, actor, p)
			if err != nil {
				return err
			}
			if err := s.repo.CreateProforma(txCtx, proforma); err != nil {
				return fmt.Errorf("failed to attach proforma: %w", err)
			}
		}
		if err := appendHistory(txCtx, s.history, model.KindOrder, order.Reference, model.StageCreated, actor,
			map[string]interface{}{"amount": money.String(), "proformas": len(req.Proformas)}); err != nil {
			return err
		}
		return s.publish(txCtx, EventOrderCreated, order, actor, nil)
	})
	if err != nil {
		return nil, err
	}

	s.events.Flush()
	s.logger.Info("order created", zap.String("request_id", order.Reference), zap.String("amount", money.String()))
	return s.Get(ctx, order.Reference)
}

func (s *orderService) Get(ctx context.Context, reference string) (*model.Order, error) {
	ref, err := parseReference(reference, model.KindOrder)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByReference(ctx, ref)
	if err != nil {
		return nil, notFound("order", ref, err)
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, filter repository.RequestFilter) ([]model.Order, int64, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *orderService) step(ctx context.Context, reference string, fn func(txCtx context.Context, o *model.Order) error) (*model.Order, error) {
	ref, err := parseReference(reference, model.KindOrder)
	if err != nil {
		return nil, err
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.store.findForUpdate(txCtx, ref)
		if err != nil {
			return err
		}
		return fn(txCtx, p.(*model.Order))
	})
	if err != nil {
		return nil, err
	}
	s.events.Flush()
	return s.Get(ctx, ref)
}

func (s *orderService) AddProforma(ctx context.Context, reference, actor string, req ProformaDTO) (*model.Order, error) {
	return s.step(ctx, reference, func(txCtx context.Context, o *model.Order) error {
		if o.Status != model.PayablePending || o.ApprovedOnce {
			return refused(o.Reference, "add a proforma to", string(o.Status), ErrInvalidState)
		}
		proforma, err := buildProforma(o.Reference, actor, req)
		if err != nil {
			return err
		}
		if err := s.repo.CreateProforma(txCtx, proforma); err != nil {
			return fmt.Errorf("failed to attach proforma: %w", err)
		}
		if err := appendHistory(txCtx, s.history, model.KindOrder, o.Reference, model.StageProformaAdded, actor,
			map[string]interface{}{"supplier": proforma.Supplier, "amount": proforma.Amount.String(), "currency": proforma.Currency}); err != nil {
			return err
		}
		return s.publish(txCtx, EventOrderProformaAdded, o, actor, map[string]interface{}{"supplier": proforma.Supplier})
	})
}

// Validate approves the order against one of its proformas, which fixes the amount due.
func (s *orderService) Validate(ctx context.Context, reference, actor, proformaID string) (*model.Order, error) {
	pid, err := uuid.Parse(proformaID)
	if err != nil {
		return nil, model.Invalid("proforma_id", "invalid proforma id")
	}
	return s.step(ctx, reference, func(txCtx context.Context, o *model.Order) error {
		if err := checkPayableDecision(o, "validate"); err != nil {
			return err
		}
		var chosen *model.Proforma
		for i := range o.Proformas {
			if o.Proformas[i].ID == pid {
				chosen = &o.Proformas[i]
				break
			}
		}
		if chosen == nil {
			return fmt.Errorf("proforma %s on %s: %w", proformaID, o.Reference, ErrNotFound)
		}

		updates := validateUpdates(actor, s.now())
		updates["validated_proforma_id"] = pid
		if err := decide(txCtx, s.store, o, "validate", updates); err != nil {
			return err
		}
		if err := s.repo.MarkProformaValidated(txCtx, pid); err != nil {
			return fmt.Errorf("failed to mark proforma validated: %w", err)
		}
		if err := appendHistory(txCtx, s.history, model.KindOrder, o.Reference, model.StageValidated, actor,
			map[string]interface{}{"proforma_id": proformaID, "supplier": chosen.Supplier, "total_due": chosen.Amount.String(), "currency": chosen.Currency}); err != nil {
			return err
		}
		return s.publish(txCtx, EventOrderValidated, o, actor, map[string]interface{}{
			"supplier":  chosen.Supplier,
			"total_due": chosen.Amount.String(),
		})
	})
}

func (s *orderService) Reject(ctx context.Context, reference, actor, reason string) (*model.Order, error) {
	return s.step(ctx, reference, func(txCtx context.Context, o *model.Order) error {
		if err := decide(txCtx, s.store, o, "reject", rejectUpdates(actor, reason, s.now())); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindOrder, o.Reference, model.StageRejected, actor,
			map[string]interface{}{"reason": reason}); err != nil {
			return err
		}
		return s.publish(txCtx, EventOrderRejected, o, actor, map[string]interface{}{"reason": reason})
	})
}

func (s *orderService) Cancel(ctx context.Context, reference, actor, reason string) (*model.Order, error) {
	return s.step(ctx, reference, func(txCtx context.Context, o *model.Order) error {
		if err := cancelPayable(txCtx, s.store, o, actor, reason, s.now()); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindOrder, o.Reference, model.StageCancelled, actor,
			map[string]interface{}{"reason": reason}); err != nil {
			return err
		}
		return s.publish(txCtx, EventOrderCancelled, o, actor, map[string]interface{}{"reason": reason})
	})
}

func (s *orderService) publish(txCtx context.Context, eventType string, o *model.Order, actor string, extra map[string]interface{}) error {
	data := requesterData(&o.RequestHeader, extra)
	data["title"] = o.Title
	return s.events.Publish(txCtx, DomainEvent{
		Type:      eventType,
		Aggregate: string(model.KindOrder),
		Reference: o.Reference,
		Actor:     actor,
		Data:      data,
	})
}
