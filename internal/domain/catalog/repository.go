package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, name, description, price, stock, category, image_url, available, created_by, created_at, updated_at`
const serviceColumns = `id, name, description, price, category, image_url, available, created_by, created_at, updated_at`

// FindItem resolves an order line reference by its kind discriminator.
// Dispatch is explicit per kind rather than relying on a shared table.
func (r *Repository) FindItem(ctx context.Context, kind ItemKind, id uuid.UUID) (*Item, error) {
	switch kind {
	case KindProduct:
		p, err := r.GetProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return p.Item(), nil
	case KindService:
		s, err := r.GetServiceByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.Item(), nil
	default:
		return nil, ErrInvalidItemKind
	}
}

// AdjustStock applies a signed delta to a product's stock.
// The non-negative invariant is re-checked at mutation time via the
// conditional WHERE clause, so concurrent orders cannot over-sell.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `
		UPDATE products
		SET stock = stock + $1, updated_at = now()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING `+productColumns+`
	`, delta, id)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, findErr := r.GetProductByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrInsufficientStock
}

// SetStock sets an absolute stock level (admin restock)
func (r *Repository) SetStock(ctx context.Context, id uuid.UUID, stock int) (*Product, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	var p Product
	err := r.db.GetContext(ctx, &p, `
		UPDATE products
		SET stock = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+productColumns+`
	`, stock, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *Product) error {
	return r.db.GetContext(ctx, p, `
		INSERT INTO products (id, name, description, price, stock, category, image_url, available, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+productColumns+`
	`, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL, p.Available, p.CreatedBy)
}

func (r *Repository) CreateService(ctx context.Context, s *Service) error {
	return r.db.GetContext(ctx, s, `
		INSERT INTO services (id, name, description, price, category, image_url, available, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+serviceColumns+`
	`, s.ID, s.Name, s.Description, s.Price, s.Category, s.ImageURL, s.Available, s.CreatedBy)
}

func (r *Repository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	var s Service
	err := r.db.GetContext(ctx, &s, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListProducts returns available products, optionally filtered by category
func (r *Repository) ListProducts(ctx context.Context, category string) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE available = true`
	args := []interface{}{}
	if category != "" {
		query += ` AND category ILIKE $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	products := []*Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}
	return products, nil
}

// ListServices returns available services, optionally filtered by category
func (r *Repository) ListServices(ctx context.Context, category string) ([]*Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE available = true`
	args := []interface{}{}
	if category != "" {
		query += ` AND category ILIKE $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	services := []*Service{}
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, err
	}
	return services, nil
}

// UpdateProduct applies the non-nil fields of req to a product
func (r *Repository) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateItemRequest) (*Product, error) {
	set, args := buildItemUpdate(req)
	if len(set) == 0 {
		return r.GetProductByID(ctx, id)
	}
	args = append(args, id)

	var p Product
	query := fmt.Sprintf(`UPDATE products SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), productColumns)
	err := r.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateService applies the non-nil fields of req to a service
func (r *Repository) UpdateService(ctx context.Context, id uuid.UUID, req *UpdateItemRequest) (*Service, error) {
	set, args := buildItemUpdate(req)
	if len(set) == 0 {
		return r.GetServiceByID(ctx, id)
	}
	args = append(args, id)

	var s Service
	query := fmt.Sprintf(`UPDATE services SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), serviceColumns)
	err := r.db.GetContext(ctx, &s, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &s, nil
}

func buildItemUpdate(req *UpdateItemRequest) ([]string, []interface{}) {
	set := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Available != nil {
		add("available", *req.Available)
	}
	return set, args
}

// SetImageURL stores the uploaded image URL for a product or service
func (r *Repository) SetImageURL(ctx context.Context, kind ItemKind, id uuid.UUID, url string) error {
	table := "products"
	if kind == KindService {
		table = "services"
	}
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET image_url = $1, updated_at = now() WHERE id = $2`, table), url, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// DeleteProduct removes a product
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.deleteFrom(ctx, "products", id)
}

// DeleteService removes a service
func (r *Repository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return r.deleteFrom(ctx, "services", id)
}

func (r *Repository) deleteFrom(ctx context.Context, table string, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}
