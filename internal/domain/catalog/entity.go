package catalog

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind discriminates catalog entries referenced from order lines
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

// IsValid reports whether the kind is a known discriminator
func (k ItemKind) IsValid() bool {
	return k == KindProduct || k == KindService
}

// Product is a stocked catalog entry
type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description sql.NullString  `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Category    string          `db:"category" json:"category"`
	ImageURL    sql.NullString  `db:"image_url" json:"image_url,omitempty"`
	Available   bool            `db:"available" json:"available"`
	CreatedBy   uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Service is an unstocked catalog entry
type Service struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description sql.NullString  `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	ImageURL    sql.NullString  `db:"image_url" json:"image_url,omitempty"`
	Available   bool            `db:"available" json:"available"`
	CreatedBy   uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Item is the kind-agnostic view an order line resolves against
type Item struct {
	ID        uuid.UUID
	Kind      ItemKind
	Name      string
	Price     decimal.Decimal
	Stock     int // meaningful only for products
	Available bool
}

func (p *Product) Item() *Item {
	return &Item{ID: p.ID, Kind: KindProduct, Name: p.Name, Price: p.Price, Stock: p.Stock, Available: p.Available}
}

func (s *Service) Item() *Item {
	return &Item{ID: s.ID, Kind: KindService, Name: s.Name, Price: s.Price, Available: s.Available}
}
