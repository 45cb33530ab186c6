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

// --- DTOs ---

type CreateFundingDTO struct {
	// Amount is either "<number> <CCY>" or a bare number paired with Currency.
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency"`
	Reason   string `json:"reason" binding:"required"`
}

type FundingDetailsDTO struct {
	Method  string `json:"method" binding:"required"`
	Details string `json:"details"`
}

type ReasonDTO struct {
	Reason string `json:"reason"`
}

// --- Interface ---

type FundingService interface {
	Create(ctx context.Context, actor string, req CreateFundingDTO) (*model.FundingRequest, error)
	Get(ctx context.Context, reference string) (*model.FundingRequest, error)
	List(ctx context.Context, filter repository.RequestFilter) ([]model.FundingRequest, int64, error)
	PreApprove(ctx context.Context, reference, actor string) (*model.FundingRequest, error)
	SubmitDetails(ctx context.Context, reference, actor string, req FundingDetailsDTO) (*model.FundingRequest, error)
	FinalApprove(ctx context.Context, reference, actor string) (*model.FundingRequest, error)
	Reject(ctx context.Context, reference, actor, reason string) (*model.FundingRequest, error)
	ReportIssue(ctx context.Context, reference, actor, reason string) (*model.FundingRequest, error)
	CorrectDetails(ctx context.Context, reference, actor string, req FundingDetailsDTO) (*model.FundingRequest, error)
}

type fundingService struct {
	txManager repository.TransactionManager
	repo      repository.FundingRepository
	sequences repository.SequenceRepository
	history   repository.HistoryRepository
	ledger    LedgerService
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewFundingService(
	txManager repository.TransactionManager,
	repo repository.FundingRepository,
	sequences repository.SequenceRepository,
	history repository.HistoryRepository,
	ledger LedgerService,
	events EventPublisher,
	logger *zap.Logger,
) FundingService {
	return &fundingService{
		txManager: txManager,
		repo:      repo,
		sequences: sequences,
		history:   history,
		ledger:    ledger,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// parseAmount accepts "15000 XOF" or ("15000", "XOF").
func parseAmount(amount, currency string) (model.Money, error) {
	if strings.TrimSpace(currency) == "" {
		return model.ParseMoney(amount)
	}
	return model.ParseMoney(amount + " " + currency)
}

// --- Implementation ---

func (s *fundingService) Create(ctx context.Context, actor string, req CreateFundingDTO) (*model.FundingRequest, error) {
	money, err := parseAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, model.Invalid("reason", "is required")
	}

	funding := &model.FundingRequest{
		RequestHeader: model.RequestHeader{
			Kind:        model.KindFunding,
			Amount:      money.Amount,
			Currency:    money.Currency,
			RequestedBy: actor,
		},
		Status: model.FundingPending,
		Reason: req.Reason,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		id, err := newReference(txCtx, s.sequences, model.KindFunding, s.now())
		if err != nil {
			return err
		}
		funding.Reference = id.String()

		if err := s.repo.Create(txCtx, funding); err != nil {
			return fmt.Errorf("failed to create funding request: %w", err)
		}
		if err := appendHistory(txCtx, s.history, model.KindFunding, funding.Reference, model.StageCreated, actor,
			map[string]interface{}{"amount": money.String(), "reason": req.Reason}); err != nil {
			return err
		}
		return s.publish(txCtx, EventFundingCreated, funding, actor, nil)
	})
	if err != nil {
		return nil, err
	}

	s.events.Flush()
	s.logger.Info("funding request created", zap.String("request_id", funding.Reference), zap.String("amount", money.String()))
	return funding, nil
}

func (s *fundingService) Get(ctx context.Context, reference string) (*model.FundingRequest, error) {
	ref, err := parseReference(reference, model.KindFunding)
	if err != nil {
		return nil, err
	}
	f, err := s.repo.FindByReference(ctx, ref)
	if err != nil {
		return nil, notFound("funding request", ref, err)
	}
	return f, nil
}

func (s *fundingService) List(ctx context.Context, filter repository.RequestFilter) ([]model.FundingRequest, int64, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list funding requests: %w", err)
	}
	return items, total, nil
}

// checkFundingStep enforces forward-only progress: a step whose target was already reached is
// AlreadyProcessed, a step attempted too early is InvalidState.
func checkFundingStep(f *model.FundingRequest, action string, from model.FundingStatus) error {
	if f.Status == from && !f.ApprovedOnce {
		return nil
	}
	if f.ApprovedOnce || f.Status.IsTerminal() || f.Status.Rank() > from.Rank() {
		return refused(f.Reference, action, string(f.Status), ErrAlreadyProcessed)
	}
	return refused(f.Reference, action, string(f.Status), ErrInvalidState)
}

// transition runs one locked workflow step and reloads the request afterwards.
func (s *fundingService) transition(ctx context.Context, reference string, step func(txCtx context.Context, f *model.FundingRequest) error) (*model.FundingRequest, error) {
	ref, err := parseReference(reference, model.KindFunding)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		f, err := s.repo.FindByReferenceForUpdate(txCtx, ref)
		if err != nil {
			return notFound("funding request", ref, err)
		}
		return step(txCtx, f)
	})
	if err != nil {
		return nil, err
	}

	s.events.Flush()
	f, err := s.repo.FindByReference(ctx, ref)
	if err != nil {
		return nil, notFound("funding request", ref, err)
	}
	return f, nil
}

func (s *fundingService) PreApprove(ctx context.Context, reference, actor string) (*model.FundingRequest, error) {
	return s.transition(ctx, reference, func(txCtx context.Context, f *model.FundingRequest) error {
		if err := checkFundingStep(f, "pre-approve", model.FundingPending); err != nil {
			return err
		}
		now := s.now()
		if err := s.guardedUpdate(txCtx, f, "pre-approve", model.FundingPending, map[string]interface{}{
			"status":          model.FundingPreApproved,
			"pre_approved_by": actor,
			"pre_approved_at": now,
		}); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindFunding, f.Reference, model.StagePreApproved, actor, nil); err != nil {
			return err
		}
		return s.publish(txCtx, EventFundingPreApproved, f, actor, nil)
	})
}

func (s *fundingService) SubmitDetails(ctx context.Context, reference, actor string, req FundingDetailsDTO) (*model.FundingRequest, error) {
	if strings.TrimSpace(req.Method) == "" {
		return nil, model.Invalid("method", "is required")
	}
	return s.transition(ctx, reference, func(txCtx context.Context, f *model.FundingRequest) error {
		if err := checkFundingStep(f, "submit details for", model.FundingPreApproved); err != nil {
			return err
		}
		now := s.now()
		if err := s.guardedUpdate(txCtx, f, "submit details for", model.FundingPreApproved, map[string]interface{}{
			"status":               model.FundingDetailsSubmitted,
			"disbursement_method":  req.Method,
			"disbursement_details": req.Details,
			"details_submitted_by": actor,
			"details_submitted_at": now,
		}); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindFunding, f.Reference, model.StageDetailsSubmitted, actor,
			map[string]interface{}{"method": req.Method, "details": req.Details}); err != nil {
			return err
		}
		return s.publish(txCtx, EventFundingDetailsSubmitted, f, actor, map[string]interface{}{"method": req.Method})
	})
}

func (s *fundingService) FinalApprove(ctx context.Context, reference, actor string) (*model.FundingRequest, error) {
	return s.transition(ctx, reference, func(txCtx context.Context, f *model.FundingRequest) error {
		if err := checkFundingStep(f, "approve", model.FundingDetailsSubmitted); err != nil {
			return err
		}
		if f.IssueReported {
			return refused(f.Reference, "approve", "issue reported", ErrInvalidState)
		}
		return s.approve(txCtx, f, actor)
	})
}

// approve moves DetailsSubmitted to Approved and credits the ledger at most once.
func (s *fundingService) approve(txCtx context.Context, f *model.FundingRequest, actor string) error {
	now := s.now()
	if err := s.guardedUpdate(txCtx, f, "approve", model.FundingDetailsSubmitted, map[string]interface{}{
		"status":        model.FundingApproved,
		"approved_once": true,
		"approved_by":   actor,
		"approved_at":   now,
	}); err != nil {
		return err
	}

	credited, err := s.creditOnce(txCtx, f, actor)
	if err != nil {
		return err
	}
	if err := appendHistory(txCtx, s.history, model.KindFunding, f.Reference, model.StageApproved, actor,
		map[string]interface{}{"credited": credited}); err != nil {
		return err
	}
	return s.publish(txCtx, EventFundingApproved, f, actor, map[string]interface{}{"credited": credited})
}

// creditOnce claims the ledger_credited flag with a conditional update before crediting.
func (s *fundingService) creditOnce(txCtx context.Context, f *model.FundingRequest, actor string) (bool, error) {
	claimed, err := s.repo.UpdateIf(txCtx, f.ID,
		map[string]interface{}{"ledger_credited": false},
		map[string]interface{}{"ledger_credited": true})
	if err != nil {
		return false, fmt.Errorf("failed to claim ledger credit for %s: %w", f.Reference, err)
	}
	if !claimed {
		s.logger.Warn("funding already credited", zap.String("request_id", f.Reference))
		return false, nil
	}

	if _, err := s.ledger.Credit(txCtx, LedgerMovement{
		Currency:         f.Currency,
		Amount:           f.Amount,
		RelatedRequestID: f.Reference,
		Details:          "funding approved: " + f.Reason,
		Actor:            actor,
	}); err != nil {
		return false, fmt.Errorf("failed to credit ledger for %s: %w", f.Reference, err)
	}
	return true, nil
}

func (s *fundingService) Reject(ctx context.Context, reference, actor, reason string) (*model.FundingRequest, error) {
	return s.transition(ctx, reference, func(txCtx context.Context, f *model.FundingRequest) error {
		if f.Status.IsTerminal() || f.ApprovedOnce {
			return refused(f.Reference, "reject", string(f.Status), ErrAlreadyProcessed)
		}
		now := s.now()
		if err := s.guardedUpdate(txCtx, f, "reject", f.Status, map[string]interface{}{
			"status":           model.FundingRejected,
			"approved_once":    true,
			"rejected_by":      actor,
			"rejected_at":      now,
			"rejection_reason": reason,
		}); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindFunding, f.Reference, model.StageRejected, actor,
			map[string]interface{}{"reason": reason}); err != nil {
			return err
		}
		return s.publish(txCtx, EventFundingRejected, f, actor, map[string]interface{}{"reason": reason})
	})
}

func (s *fundingService) ReportIssue(ctx context.Context, reference, actor, reason string) (*model.FundingRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, model.Invalid("reason", "is required")
	}
	return s.transition(ctx, reference, func(txCtx context.Context, f *model.FundingRequest) error {
		if err := checkFundingStep(f, "report an issue on", model.FundingDetailsSubmitted); err != nil {
			return err
		}
		if err := s.guardedUpdate(txCtx, f, "report an issue on", model.FundingDetailsSubmitted, map[string]interface{}{
			"issue_reported": true,
			"issue_reason":   reason,
		}); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindFunding, f.Reference, model.StageIssueReported, actor,
			map[string]interface{}{"reason": reason}); err != nil {
			return err
		}
		return s.publish(txCtx, EventFundingIssueReported, f, actor, map[string]interface{}{"reason": reason})
	})
}

// CorrectDetails edits the disbursement details without reverting progress. When it answers a
// reported issue, the final approval is applied again; the ledger credit still fires only once.
func (s *fundingService) CorrectDetails(ctx context.Context, reference, actor string, req FundingDetailsDTO) (*model.FundingRequest, error) {
	if strings.TrimSpace(req.Method) == "" {
		return nil, model.Invalid("method", "is required")
	}
	return s.transition(ctx, reference, func(txCtx context.Context, f *model.FundingRequest) error {
		if err := checkFundingStep(f, "correct", model.FundingDetailsSubmitted); err != nil {
			return err
		}
		hadIssue := f.IssueReported
		if err := s.guardedUpdate(txCtx, f, "correct", model.FundingDetailsSubmitted, map[string]interface{}{
			"disbursement_method":  req.Method,
			"disbursement_details": req.Details,
			"issue_reported":       false,
			"issue_reason":         "",
		}); err != nil {
			return err
		}
		if err := appendHistory(txCtx, s.history, model.KindFunding, f.Reference, model.StageDetailsCorrected, actor,
			map[string]interface{}{"method": req.Method, "details": req.Details, "issue_cleared": hadIssue}); err != nil {
			return err
		}
		if err := s.publish(txCtx, EventFundingCorrected, f, actor, map[string]interface{}{"method": req.Method}); err != nil {
			return err
		}
		if !hadIssue {
			return nil
		}
		return s.approve(txCtx, f, actor)
	})
}

// guardedUpdate writes updates only if the row is still in status from and not yet approved.
func (s *fundingService) guardedUpdate(txCtx context.Context, f *model.FundingRequest, action string, from model.FundingStatus, updates map[string]interface{}) error {
	ok, err := s.repo.UpdateIf(txCtx, f.ID,
		map[string]interface{}{"status": from, "approved_once": false},
		updates)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", action, f.Reference, err)
	}
	if !ok {
		return refused(f.Reference, action, string(f.Status), ErrAlreadyProcessed)
	}
	return nil
}

func (s *fundingService) publish(txCtx context.Context, eventType string, f *model.FundingRequest, actor string, extra map[string]interface{}) error {
	data := requesterData(&f.RequestHeader, extra)
	data["purpose"] = f.Reason
	return s.events.Publish(txCtx, DomainEvent{
		Type:      eventType,
		Aggregate: string(model.KindFunding),
		Reference: f.Reference,
		Actor:     actor,
		Data:      data,
	})
}
