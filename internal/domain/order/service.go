package order

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-api/internal/domain/catalog"
	"github.com/orderhub/orderhub-api/internal/domain/user"
	"github.com/orderhub/orderhub-api/internal/pkg/upload"
)

// CatalogStore is the catalog contract the workflow needs: resolve a
// line reference and apply an atomic conditional stock adjustment.
type CatalogStore interface {
	FindItem(ctx context.Context, kind catalog.ItemKind, id uuid.UUID) (*catalog.Item, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*catalog.Product, error)
}

// Ledger is the account-ledger contract: look up a user and apply an
// atomic conditional credit adjustment.
type Ledger interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*user.User, error)
}

// Uploader stores a payment proof and returns its URL
type Uploader interface {
	Upload(ctx context.Context, category, filename string, reader io.Reader, contentType string) (*upload.Result, error)
}

// Service implements the order placement workflow and admin transitions
type Service struct {
	repo     Repository
	catalog  CatalogStore
	ledger   Ledger
	uploader Uploader
	geo      GeoIndex // nil disables nearby queries
}

// NewService creates order service
func NewService(repo Repository, catalogStore CatalogStore, ledger Ledger, uploader Uploader, geo GeoIndex) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalogStore,
		ledger:   ledger,
		uploader: uploader,
		geo:      geo,
	}
}

// PlaceOrder validates the whole cart, resolves payment, then commits
// stock decrements and the order record. No stock or ledger mutation
// happens before the entire cart has been validated and priced; if the
// commit fails partway, already-applied mutations are reversed.
func (s *Service) PlaceOrder(ctx context.Context, actor user.Actor, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if req.PaymentMethod != MethodCredits && req.PaymentMethod != MethodTransfer {
		return nil, ErrInvalidInput
	}

	u, err := s.ledger.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	location, err := resolveLocation(req.Location, u)
	if err != nil {
		return nil, err
	}

	// Price the full cart before touching stock or the ledger.
	totalAmount := decimal.Zero
	lines := make([]Item, 0, len(req.Items))
	for _, in := range req.Items {
		if !in.ItemType.IsValid() || in.ItemID == uuid.Nil || in.Quantity < 1 {
			return nil, ErrInvalidInput
		}

		item, err := s.catalog.FindItem(ctx, in.ItemType, in.ItemID)
		if err != nil {
			return nil, err
		}
		if item.Kind == catalog.KindProduct && item.Stock < in.Quantity {
			return nil, catalog.ErrInsufficientStock
		}

		totalAmount = totalAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(in.Quantity))))
		lines = append(lines, Item{
			ItemKind: item.Kind,
			ItemID:   item.ID,
			ItemName: item.Name,
			Quantity: in.Quantity,
			Price:    item.Price,
		})
	}

	o := &Order{
		ID:            uuid.New(),
		UserID:        u.ID,
		Items:         lines,
		TotalAmount:   totalAmount,
		Status:        StatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: PaymentPending,
		Longitude:     location.Longitude,
		Latitude:      location.Latitude,
	}

	// Resolve payment. The credits debit is conditional at the ledger,
	// so a concurrent order cannot overdraw between check and commit.
	creditsDebited := false
	switch req.PaymentMethod {
	case MethodCredits:
		// A zero-total cart is a no-op debit; the ledger rejects zero
		// deltas, so it never reaches the repository.
		if !totalAmount.IsZero() {
			if _, err := s.ledger.AdjustCredit(ctx, u.ID, totalAmount.Neg()); err != nil {
				return nil, err
			}
			creditsDebited = true
		}
		o.PaymentStatus = PaymentVerified

	case MethodTransfer:
		if req.Proof == nil {
			return nil, ErrProofRequired
		}
		result, err := s.uploader.Upload(ctx, "screenshots", req.Proof.Filename, req.Proof.Reader, req.Proof.ContentType)
		if err != nil {
			return nil, err
		}
		o.PaymentScreenshot.String = result.URL
		o.PaymentScreenshot.Valid = true
	}

	// Commit phase: decrement stock for product lines, then persist the
	// order. Each decrement re-checks the invariant at mutation time; on
	// any failure, compensate already-applied mutations so no stock or
	// ledger value is left stranded by a partially applied order.
	decremented := make([]Item, 0, len(lines))
	rollback := func(cause error) {
		for _, line := range decremented {
			if _, rbErr := s.catalog.AdjustStock(ctx, line.ItemID, line.Quantity); rbErr != nil {
				log.Error().Err(rbErr).
					Str("order_id", o.ID.String()).
					Str("item_id", line.ItemID.String()).
					Msg("failed to restore stock during order rollback")
			}
		}
		if creditsDebited {
			if _, rbErr := s.ledger.AdjustCredit(ctx, u.ID, totalAmount); rbErr != nil {
				log.Error().Err(rbErr).
					Str("order_id", o.ID.String()).
					Str("user_id", u.ID.String()).
					Msg("failed to refund credits during order rollback")
			}
		}
		log.Warn().Err(cause).Str("order_id", o.ID.String()).Msg("order placement rolled back")
	}

	for _, line := range lines {
		if line.ItemKind != catalog.KindProduct {
			continue
		}
		if _, err := s.catalog.AdjustStock(ctx, line.ItemID, -line.Quantity); err != nil {
			rollback(err)
			return nil, err
		}
		decremented = append(decremented, line)
	}

	if err := s.repo.Create(ctx, o); err != nil {
		rollback(err)
		return nil, err
	}

	if s.geo != nil {
		// Best effort: a missing geo entry only degrades nearby queries.
		if err := s.geo.Add(ctx, o.ID, location); err != nil {
			log.Warn().Err(err).Str("order_id", o.ID.String()).Msg("failed to index order location")
		}
	}

	log.Info().
		Str("order_id", o.ID.String()).
		Str("user_id", u.ID.String()).
		Str("payment_method", string(req.PaymentMethod)).
		Str("total_amount", totalAmount.String()).
		Msg("order placed")

	return o, nil
}

// GetUserOrders returns the caller's orders, newest first
func (s *Service) GetUserOrders(ctx context.Context, actor user.Actor) ([]*Order, error) {
	return s.repo.ListByUser(ctx, actor.UserID)
}

// UpdateOrderStatus transitions an order to confirmed or rejected.
// Rejecting a credits-paid order refunds the full amount before the new
// status is persisted; the refund is skipped if the order was already
// rejected so repeated calls cannot credit the user twice.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor user.Actor, orderID uuid.UUID, status Status) (*Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if status != StatusConfirmed && status != StatusRejected {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if status == StatusRejected && o.PaymentMethod == MethodCredits && o.Status != StatusRejected && !o.TotalAmount.IsZero() {
		if _, err := s.ledger.AdjustCredit(ctx, o.UserID, o.TotalAmount); err != nil {
			return nil, err
		}
		log.Info().
			Str("order_id", o.ID.String()).
			Str("user_id", o.UserID.String()).
			Str("amount", o.TotalAmount.String()).
			Msg("credits refunded for rejected order")
	}

	return s.repo.UpdateStatus(ctx, orderID, status)
}

// GetAllOrders returns all orders for admins, newest first
func (s *Service) GetAllOrders(ctx context.Context, actor user.Actor, filter Filter) ([]*Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx, filter)
}

// VerifyPayment transitions an order's payment status. It never touches
// the ledger: credits orders settle at placement and refund at rejection,
// unlike the standalone payment reconciliation flow which credits the
// ledger when a top-up proof is verified.
func (s *Service) VerifyPayment(ctx context.Context, actor user.Actor, orderID uuid.UUID, status PaymentStatus) (*Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if status != PaymentVerified && status != PaymentRejected {
		return nil, ErrInvalidStatus
	}
	return s.repo.UpdatePaymentStatus(ctx, orderID, status)
}

// DefaultNearbyRadius is the fallback search radius in meters
const DefaultNearbyRadius = 5000.0

// GetNearbyOrders returns orders within maxDistance meters of the point
func (s *Service) GetNearbyOrders(ctx context.Context, actor user.Actor, point user.GeoPoint, maxDistance float64) ([]*Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if !point.Valid() {
		return nil, ErrInvalidInput
	}
	if s.geo == nil {
		return nil, ErrNearbyDisabled
	}
	if maxDistance <= 0 {
		maxDistance = DefaultNearbyRadius
	}

	ids, err := s.geo.Search(ctx, point, maxDistance)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByIDs(ctx, ids)
}

func resolveLocation(requested *user.GeoPoint, u *user.User) (user.GeoPoint, error) {
	if requested != nil && requested.Valid() {
		return *requested, nil
	}
	if stored := u.Location(); stored != nil {
		return *stored, nil
	}
	return user.GeoPoint{}, ErrLocationRequired
}
