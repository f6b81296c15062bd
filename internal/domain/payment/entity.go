package payment

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the reconciliation state of a submitted payment
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Payment is a user-submitted credit top-up awaiting admin review
type Payment struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	UserID     uuid.UUID       `db:"user_id" json:"user_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Screenshot string          `db:"screenshot" json:"screenshot"`
	Status     Status          `db:"status" json:"status"`
	Reason     sql.NullString  `db:"reason" json:"-"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// RejectionReason returns the stored reason, empty unless rejected
func (p *Payment) RejectionReason() string {
	if p.Reason.Valid {
		return p.Reason.String
	}
	return ""
}

// MarshalJSON flattens the nullable reason into a plain string field
func (p Payment) MarshalJSON() ([]byte, error) {
	type alias Payment
	return json.Marshal(struct {
		alias
		Reason string `json:"reason,omitempty"`
	}{
		alias:  alias(p),
		Reason: p.RejectionReason(),
	})
}
