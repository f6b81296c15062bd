package catalog

import "github.com/shopspring/decimal"

// CreateProductRequest is the admin payload for a new product
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Category    string          `json:"category" validate:"required,min=2,max=100"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// CreateServiceRequest is the admin payload for a new service
type CreateServiceRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Category    string          `json:"category" validate:"required,min=2,max=100"`
}

// UpdateItemRequest carries optional field updates for a product or service
type UpdateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" validate:"omitempty,min=2,max=100"`
	Available   *bool            `json:"available"`
}

// UpdateStockRequest sets an absolute stock level
type UpdateStockRequest struct {
	NewStock int `json:"new_stock" validate:"gte=0"`
}
