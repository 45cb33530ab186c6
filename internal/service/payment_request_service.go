package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"

	"go.uber.org/zap"
)

type CreatePaymentRequestDTO struct {
	Title       string     `json:"title" binding:"required"`
	Beneficiary string     `json:"beneficiary" binding:"required"`
	Amount      string     `json:"amount" binding:"required"`
	Currency    string     `json:"currency"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type PaymentRequestService interface {
	Create(ctx context.Context, actor string, req CreatePaymentRequestDTO) (*model.PaymentRequest, error)
	Get(ctx context.Context, reference string) (*model.PaymentRequest, error)
	List(ctx context.Context, filter repository.RequestFilter) ([]model.PaymentRequest, int64, error)
	Validate(ctx context.Context, reference, actor string) (*model.PaymentRequest, error)
	Reject(ctx context.Context, reference, actor, reason string) (*model.PaymentRequest, error)
	Cancel(ctx context.Context, reference, actor, reason string) (*model.PaymentRequest, error)
}

type paymentRequestService struct {
	txManager repository.TransactionManager
	repo      repository.PaymentRequestRepository
	store     paymentRequestStore
	sequences repository.SequenceRepository
	history   repository.HistoryRepository
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewPaymentRequestService(
	txManager repository.TransactionManager,
	repo repository.PaymentRequestRepository,
	sequences repository.SequenceRepository,
	history repository.HistoryRepository,
	events EventPublisher,
	logger *zap.Logger,
) PaymentRequestService {
	return &paymentRequestService{
		txManager: txManager,
		repo:      repo,
		store:     paymentRequestStore{repo: repo},
		sequences: sequences,
		history:   history,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *paymentRequestService) Create(ctx context.Context, actor string, req CreatePaymentRequestDTO) (*model.PaymentRequest, error) {
	money, err := parseAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.Invalid("title", "is required")
	}
	if strings.TrimSpace(req.Beneficiary) == "" {
		return nil, model.Invalid("beneficiary", "is required")
	}

	pr := &model.PaymentRequest{
		RequestHeader: model.RequestHeader{
			Kind:        model.KindPaymentRequest,
			Amount:      money.Amount,
			Currency:    money.Currency,
			RequestedBy: actor,
		},
		PaymentState: model.PaymentState{
			Status:        model.PayablePending,
			PaymentStatus: model.PaymentPending,
		},
		Title:       req.Title,
		Beneficiary: req.Beneficiary,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		id, err := newReference(txCtx, s.sequences, model.KindPaymentRequest, s.now())
		if err != nil {
			return err
		}
		pr.Reference = id.String()

		if err := s.repo.Create(txCtx, pr); err != nil {
			return fmt.Errorf("failed to create payment request: %w", err)
		}
		if err := appendHistory(txCtx, s.history, model.KindPaymentRequest, pr.Reference, model.StageCreated, actor,
			map[string]interface{}{"amount": money.String(), "beneficiary": req.Beneficiary}); err != nil {
			return err
		}
		return s.publish(txCtx, EventPaymentRequestCreated, pr, actor, map[string]interface{}{"title": req.Title})
	})
	if err != nil {
		return nil, err
	}

	s.events.Flush()
	s.logger.Info("payment request created", zap.String("request_id", pr.Reference), zap.String("amount", money.String()))
	return pr, nil
}

func (s *paymentRequestService) Get(ctx context.Context, reference string) (*model.PaymentRequest, error) {
	ref, err := parseReference(reference, model.KindPaymentRequest)
	if err != nil {
		return nil, err
	}
	pr, err := s.repo.FindByReference(ctx, ref)
	if err != nil {
		return nil, notFound("payment request", ref, err)
	}
	return pr, nil
}

func (s *paymentRequestService) List(ctx context.Context, filter repository.RequestFilter) ([]model.PaymentRequest, int64, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payment requests: %w", err)
	}
	return items, total, nil
}

func (s *paymentRequestService) step(ctx context.Context, reference string, fn func(txCtx context.Context, pr *model.PaymentRequest) error) (*model.PaymentRequest, error) {
	ref, err := parseReference(reference, model.KindPaymentRequest)
	if err != nil {
		return nil, err
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.store.findForUpdate(txCtx, ref)
		if err != nil {
			return err
		}
		return fn(txCtx, p.(*model.PaymentRequest))
	})
	if err != nil {
		return nil, err
	}
	s.events.Flush()
	return s.Get(ctx, ref)
}

func (s *paymentRequestService) Validate(ctx context.Context, reference, actor string) (*model.PaymentRequest, error) {
	return s.step(ctx, reference, func(txCtx context.Context, pr *model.PaymentRequest) error {
		if err := decide(txCtx, s.store, pr, "validate", validateUpdates(actor, s.now())); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindPaymentRequest, pr.Reference, model.StageValidated, actor, nil); err != nil {
			return err
		}
		return s.publish(txCtx, EventPaymentRequestValidated, pr, actor, nil)
	})
}

func (s *paymentRequestService) Reject(ctx context.Context, reference, actor, reason string) (*model.PaymentRequest, error) {
	return s.step(ctx, reference, func(txCtx context.Context, pr *model.PaymentRequest) error {
		if err := decide(txCtx, s.store, pr, "reject", rejectUpdates(actor, reason, s.now())); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindPaymentRequest, pr.Reference, model.StageRejected, actor,
			map[string]interface{}{"reason": reason}); err != nil {
			return err
		}
		return s.publish(txCtx, EventPaymentRequestRejected, pr, actor, map[string]interface{}{"reason": reason})
	})
}

func (s *paymentRequestService) Cancel(ctx context.Context, reference, actor, reason string) (*model.PaymentRequest, error) {
	return s.step(ctx, reference, func(txCtx context.Context, pr *model.PaymentRequest) error {
		if err := cancelPayable(txCtx, s.store, pr, actor, reason, s.now()); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindPaymentRequest, pr.Reference, model.StageCancelled, actor,
			map[string]interface{}{"reason": reason}); err != nil {
			return err
		}
		return s.publish(txCtx, EventPaymentRequestCancelled, pr, actor, map[string]interface{}{"reason": reason})
	})
}

func (s *paymentRequestService) publish(txCtx context.Context, eventType string, pr *model.PaymentRequest, actor string, extra map[string]interface{}) error {
	data := requesterData(&pr.RequestHeader, extra)
	data["beneficiary"] = pr.Beneficiary
	return s.events.Publish(txCtx, DomainEvent{
		Type:      eventType,
		Aggregate: string(model.KindPaymentRequest),
		Reference: pr.Reference,
		Actor:     actor,
		Data:      data,
	})
}
