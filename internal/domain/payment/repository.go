package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment data access
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error)
	List(ctx context.Context, status Status) ([]*Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, reason string) (*Payment, error)
	Revert(ctx context.Context, id uuid.UUID, from Status) (*Payment, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, user_id, amount, screenshot, status, reason, created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Payment) error {
	return r.db.GetContext(ctx, p, `
		INSERT INTO payments (id, user_id, amount, screenshot, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+paymentColumns+`
	`, p.ID, p.UserID, p.Amount, p.Screenshot, p.Status)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error) {
	payments := []*Payment{}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// List returns the review queue: pending payments first, oldest claims
// at the top of each group. A non-empty status narrows the listing.
func (r *repository) List(ctx context.Context, status Status) ([]*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at ASC`

	payments := []*Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateStatus applies the verdict only while the payment is still
// pending; a concurrent reviewer loses and gets ErrAlreadyProcessed.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, reason string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		UPDATE payments
		SET status = $1, reason = NULLIF($2, ''), updated_at = now()
		WHERE id = $3 AND status = 'pending'
		RETURNING `+paymentColumns+`
	`, status, reason, id)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyProcessed
}

// Revert returns a decided payment to pending so the verdict can be
// retried. Guarded on the status the caller committed, so it cannot
// clobber a row that has since moved elsewhere.
func (r *repository) Revert(ctx context.Context, id uuid.UUID, from Status) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		UPDATE payments
		SET status = 'pending', reason = NULL, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+paymentColumns+`
	`, id, from)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyProcessed
}
