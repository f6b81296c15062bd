package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines order data access
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	List(ctx context.Context, filter Filter) ([]*Order, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Order, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates order repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, user_id, total_amount, status, payment_method, payment_screenshot, payment_status, longitude, latitude, created_at, updated_at`

// itemQuery resolves the display name of each line against the catalog;
// the price column stays the snapshot taken at order time.
const itemQuery = `
	SELECT oi.id, oi.order_id, oi.item_kind, oi.item_id, oi.quantity, oi.price,
	       COALESCE(p.name, s.name, '') AS item_name
	FROM order_items oi
	LEFT JOIN products p ON oi.item_kind = 'product' AND p.id = oi.item_id
	LEFT JOIN services s ON oi.item_kind = 'service' AND s.id = oi.item_id
`

func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, o, `
		INSERT INTO orders (id, user_id, total_amount, status, payment_method, payment_screenshot, payment_status, longitude, latitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+orderColumns+`
	`, o.ID, o.UserID, o.TotalAmount, o.Status, o.PaymentMethod, o.PaymentScreenshot, o.PaymentStatus, o.Longitude, o.Latitude)
	if err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, item_kind, item_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, item.OrderID, item.ItemKind, item.ItemID, item.Quantity, item.Price)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	orders := []*Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	where := []string{}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		where = append(where, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	orders := []*Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByIDs returns the orders in the same sequence as ids (missing ids are skipped)
func (r *repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Order, error) {
	if len(ids) == 0 {
		return []*Order{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+orderColumns+` FROM orders WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	fetched := []*Order{}
	if err := r.db.SelectContext(ctx, &fetched, query, args...); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, fetched); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*Order, len(fetched))
	for _, o := range fetched {
		byID[o.ID] = o
	}
	orders := make([]*Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2
		RETURNING `+orderColumns+`
	`, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, `
		UPDATE orders SET payment_status = $1, updated_at = now() WHERE id = $2
		RETURNING `+orderColumns+`
	`, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	byID := make(map[uuid.UUID]*Order, len(orders))
	for _, o := range orders {
		o.Items = []Item{}
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	query, args, err := sqlx.In(itemQuery+` WHERE oi.order_id IN (?) ORDER BY oi.id`, ids)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)

	items := []Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}
	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}
