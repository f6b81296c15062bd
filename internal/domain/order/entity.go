package order

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-api/internal/domain/catalog"
)

// Status represents order fulfilment status
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// PaymentMethod represents how an order is paid
type PaymentMethod string

const (
	MethodCredits  PaymentMethod = "credits"
	MethodTransfer PaymentMethod = "transfer"
)

// PaymentStatus represents payment verification state
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// Item is a priced order line. Price is a snapshot of the unit price at
// order time; later catalog changes do not alter historical orders.
type Item struct {
	ID       uuid.UUID        `db:"id" json:"id"`
	OrderID  uuid.UUID        `db:"order_id" json:"-"`
	ItemKind catalog.ItemKind `db:"item_kind" json:"item_type"`
	ItemID   uuid.UUID        `db:"item_id" json:"item_id"`
	ItemName string           `db:"item_name" json:"item_name,omitempty"`
	Quantity int              `db:"quantity" json:"quantity"`
	Price    decimal.Decimal  `db:"price" json:"price"`
}

// Order represents a placed order
type Order struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	UserID            uuid.UUID       `db:"user_id" json:"user_id"`
	Items             []Item          `db:"-" json:"items"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status            Status          `db:"status" json:"status"`
	PaymentMethod     PaymentMethod   `db:"payment_method" json:"payment_method"`
	PaymentScreenshot sql.NullString  `db:"payment_screenshot" json:"payment_screenshot,omitempty"`
	PaymentStatus     PaymentStatus   `db:"payment_status" json:"payment_status"`
	Longitude         float64         `db:"longitude" json:"longitude"`
	Latitude          float64         `db:"latitude" json:"latitude"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}
