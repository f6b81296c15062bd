package payment

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-api/internal/domain/user"
	"github.com/orderhub/orderhub-api/internal/pkg/upload"
)

// Ledger applies atomic conditional credit adjustments
type Ledger interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*user.User, error)
}

// Uploader stores a payment proof and returns its URL
type Uploader interface {
	Upload(ctx context.Context, category, filename string, reader io.Reader, contentType string) (*upload.Result, error)
}

// Service implements credit top-up submission and admin reconciliation
type Service struct {
	repo     Repository
	ledger   Ledger
	uploader Uploader
}

// NewService creates payment service
func NewService(repo Repository, ledger Ledger, uploader Uploader) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		uploader: uploader,
	}
}

// Create records a pending top-up claim. The claim itself never moves
// credits; only a verified verdict does.
func (s *Service) Create(ctx context.Context, actor user.Actor, req CreateRequest) (*Payment, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.Proof == nil {
		return nil, ErrProofRequired
	}

	if _, err := s.ledger.FindByID(ctx, actor.UserID); err != nil {
		return nil, err
	}

	uploaded, err := s.uploader.Upload(ctx, "payments", req.Proof.Filename, req.Proof.Reader, req.Proof.ContentType)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:         uuid.New(),
		UserID:     actor.UserID,
		Amount:     amount,
		Screenshot: uploaded.URL,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Str("user_id", p.UserID.String()).
		Str("amount", p.Amount.String()).
		Msg("Payment submitted")

	return p, nil
}

// GetUserPayments returns the caller's own submissions, newest first
func (s *Service) GetUserPayments(ctx context.Context, actor user.Actor) ([]*Payment, error) {
	return s.repo.ListByUser(ctx, actor.UserID)
}

// GetAllPayments returns the admin review queue, optionally narrowed to one status
func (s *Service) GetAllPayments(ctx context.Context, actor user.Actor, status Status) ([]*Payment, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if status != "" && status != StatusPending && status != StatusVerified && status != StatusRejected {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, status)
}

// GetPayment returns a single payment to its owner or an admin
func (s *Service) GetPayment(ctx context.Context, actor user.Actor, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && p.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return p, nil
}

// Review applies an admin verdict. A payment transitions out of pending
// exactly once: the conditional update decides the winner, and only the
// winning verified verdict credits the ledger.
func (s *Service) Review(ctx context.Context, actor user.Actor, paymentID uuid.UUID, status Status, reason string) (*Payment, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if status != StatusVerified && status != StatusRejected {
		return nil, ErrInvalidStatus
	}

	p, err := s.repo.UpdateStatus(ctx, paymentID, status, reason)
	if err != nil {
		return nil, err
	}

	if status == StatusVerified {
		if _, err := s.ledger.AdjustCredit(ctx, p.UserID, p.Amount); err != nil {
			log.Error().Err(err).
				Str("payment_id", p.ID.String()).
				Str("user_id", p.UserID.String()).
				Str("amount", p.Amount.String()).
				Msg("Credit adjustment failed, reverting verdict")
			// Return the claim to the review queue so verification can
			// be retried; a verified payment with no credits granted
			// would be unrecoverable.
			if _, rbErr := s.repo.Revert(ctx, p.ID, StatusVerified); rbErr != nil {
				log.Error().Err(rbErr).
					Str("payment_id", p.ID.String()).
					Msg("Failed to revert payment after credit failure")
			}
			return nil, err
		}
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Str("status", string(p.Status)).
		Str("admin_id", actor.UserID.String()).
		Msg("Payment reviewed")

	return p, nil
}
