package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, phone, address, role, credit_balance, longitude, latitude, created_at, updated_at`

// FindByID returns the user or ErrUserNotFound
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindAll returns all accounts, newest first
func (r *Repository) FindAll(ctx context.Context) ([]*User, error) {
	users := []*User{}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of req
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	set := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Phone != nil {
		add("phone", *req.Phone)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	args = append(args, id)

	var u User
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), userColumns)
	err := r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateLocation stores the profile coordinates used as the fallback
// delivery location when an order carries none.
func (r *Repository) UpdateLocation(ctx context.Context, id uuid.UUID, point GeoPoint) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		UPDATE users
		SET longitude = $1, latitude = $2, updated_at = now()
		WHERE id = $3
		RETURNING `+userColumns+`
	`, point.Longitude, point.Latitude, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// AdjustCredit applies a signed delta to the user's credit balance.
// The non-negative invariant is enforced at mutation time: the conditional
// UPDATE matches zero rows when the resulting balance would go negative,
// so a concurrent debit cannot race past an earlier read.
func (r *Repository) AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*User, error) {
	if delta.IsZero() {
		return nil, ErrInvalidAmount
	}

	var u User
	err := r.db.GetContext(ctx, &u, `
		UPDATE users
		SET credit_balance = credit_balance + $1, updated_at = now()
		WHERE id = $2 AND credit_balance + $1 >= 0
		RETURNING `+userColumns+`
	`, delta, id)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Zero rows: either the user is missing or the debit would overdraw.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrInsufficientCredits
}
