package order

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-api/internal/domain/catalog"
	"github.com/orderhub/orderhub-api/internal/domain/user"
	"github.com/orderhub/orderhub-api/internal/pkg/upload"
)

type fakeCatalog struct {
	items       map[uuid.UUID]*catalog.Item
	adjustErrs  map[uuid.UUID]error
	adjustments []int
}

func (f *fakeCatalog) FindItem(ctx context.Context, kind catalog.ItemKind, id uuid.UUID) (*catalog.Item, error) {
	item, ok := f.items[id]
	if !ok || item.Kind != kind {
		return nil, catalog.ErrItemNotFound
	}
	copyItem := *item
	return &copyItem, nil
}

func (f *fakeCatalog) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*catalog.Product, error) {
	if err := f.adjustErrs[id]; err != nil && delta < 0 {
		return nil, err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	if item.Stock+delta < 0 {
		return nil, catalog.ErrInsufficientStock
	}
	item.Stock += delta
	f.adjustments = append(f.adjustments, delta)
	return &catalog.Product{ID: item.ID, Name: item.Name, Price: item.Price, Stock: item.Stock}, nil
}

type fakeLedger struct {
	users       map[uuid.UUID]*user.User
	adjustments []decimal.Decimal
}

func (f *fakeLedger) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copyUser := *u
	return &copyUser, nil
}

func (f *fakeLedger) AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*user.User, error) {
	if delta.IsZero() {
		return nil, user.ErrInvalidAmount
	}
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	next := u.CreditBalance.Add(delta)
	if next.IsNegative() {
		return nil, user.ErrInsufficientCredits
	}
	u.CreditBalance = next
	f.adjustments = append(f.adjustments, delta)
	copyUser := *u
	return &copyUser, nil
}

type fakeUploader struct {
	err          error
	calls        int
	lastCategory string
}

func (f *fakeUploader) Upload(ctx context.Context, category, filename string, reader io.Reader, contentType string) (*upload.Result, error) {
	f.calls++
	f.lastCategory = category
	if f.err != nil {
		return nil, f.err
	}
	return &upload.Result{Key: category + "/test", URL: "https://cdn.test/" + category + "/test"}, nil
}

type fakeGeo struct {
	added   map[uuid.UUID]user.GeoPoint
	results []uuid.UUID
	err     error
}

func (f *fakeGeo) Add(ctx context.Context, orderID uuid.UUID, point user.GeoPoint) error {
	if f.added == nil {
		f.added = map[uuid.UUID]user.GeoPoint{}
	}
	f.added[orderID] = point
	return f.err
}

func (f *fakeGeo) Search(ctx context.Context, point user.GeoPoint, radiusMeters float64) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeRepo struct {
	orders    map[uuid.UUID]*Order
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[uuid.UUID]*Order{}}
}

func (f *fakeRepo) Create(ctx context.Context, o *Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyOrder := *o
	f.orders[o.ID] = &copyOrder
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copyOrder := *o
	return &copyOrder, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	out := []*Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) ([]*Order, error) {
	out := []*Order{}
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Order, error) {
	out := []*Order{}
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.Status = status
	copyOrder := *o
	return &copyOrder, nil
}

func (f *fakeRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.PaymentStatus = status
	copyOrder := *o
	return &copyOrder, nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	catalog  *fakeCatalog
	ledger   *fakeLedger
	uploader *fakeUploader
	geo      *fakeGeo

	userID    uuid.UUID
	productID uuid.UUID
	serviceID uuid.UUID
}

func newFixture(balance int64, stock int) *fixture {
	userID := uuid.New()
	productID := uuid.New()
	serviceID := uuid.New()

	cat := &fakeCatalog{items: map[uuid.UUID]*catalog.Item{
		productID: {ID: productID, Kind: catalog.KindProduct, Name: "Beans 1kg", Price: decimal.NewFromInt(30), Stock: stock, Available: true},
		serviceID: {ID: serviceID, Kind: catalog.KindService, Name: "Grinding", Price: decimal.NewFromInt(15), Available: true},
	}}
	ledger := &fakeLedger{users: map[uuid.UUID]*user.User{
		userID: {ID: userID, Name: "Test", CreditBalance: decimal.NewFromInt(balance)},
	}}
	repo := newFakeRepo()
	up := &fakeUploader{}
	geo := &fakeGeo{}

	return &fixture{
		svc:       NewService(repo, cat, ledger, up, geo),
		repo:      repo,
		catalog:   cat,
		ledger:    ledger,
		uploader:  up,
		geo:       geo,
		userID:    userID,
		productID: productID,
		serviceID: serviceID,
	}
}

func (fx *fixture) actor() user.Actor {
	return user.Actor{UserID: fx.userID}
}

var testPoint = &user.GeoPoint{Longitude: 76.9, Latitude: 43.2}

func TestPlaceOrderWithCredits(t *testing.T) {
	fx := newFixture(100, 5)

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items: []ItemInput{
			{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2},
		},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if !o.TotalAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected total 60, got %s", o.TotalAmount)
	}
	if o.PaymentStatus != PaymentVerified {
		t.Fatalf("expected payment verified for credits order, got %s", o.PaymentStatus)
	}
	if o.Status != StatusPending {
		t.Fatalf("expected pending order, got %s", o.Status)
	}

	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected balance 40, got %s", got)
	}
	if got := fx.catalog.items[fx.productID].Stock; got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
	if _, ok := fx.repo.orders[o.ID]; !ok {
		t.Fatal("order not persisted")
	}
	if _, ok := fx.geo.added[o.ID]; !ok {
		t.Fatal("order location not indexed")
	}
}

func TestPlaceOrderZeroTotalCredits(t *testing.T) {
	fx := newFixture(100, 5)
	admin := user.Actor{UserID: uuid.New(), IsAdmin: true}
	fx.catalog.items[fx.productID].Price = decimal.Zero

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2}},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if !o.TotalAmount.IsZero() {
		t.Fatalf("expected zero total, got %s", o.TotalAmount)
	}
	if o.PaymentStatus != PaymentVerified {
		t.Fatalf("expected payment verified, got %s", o.PaymentStatus)
	}
	// Nothing to debit, so the ledger is never called.
	if len(fx.ledger.adjustments) != 0 {
		t.Fatalf("ledger touched for zero-total order: %v", fx.ledger.adjustments)
	}
	if got := fx.catalog.items[fx.productID].Stock; got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	// Rejecting the order likewise skips the zero refund.
	if _, err := fx.svc.UpdateOrderStatus(context.Background(), admin, o.ID, StatusRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if len(fx.ledger.adjustments) != 0 {
		t.Fatalf("ledger touched refunding zero-total order: %v", fx.ledger.adjustments)
	}
}

func TestPlaceOrderMixedCartSkipsServiceStock(t *testing.T) {
	fx := newFixture(100, 5)

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items: []ItemInput{
			{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1},
			{ItemType: catalog.KindService, ItemID: fx.serviceID, Quantity: 2},
		},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	// 30 + 2*15
	if !o.TotalAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected total 60, got %s", o.TotalAmount)
	}
	if got := fx.catalog.items[fx.productID].Stock; got != 4 {
		t.Fatalf("expected stock 4, got %d", got)
	}
	if len(o.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(o.Items))
	}
}

func TestPlaceOrderInsufficientCredits(t *testing.T) {
	fx := newFixture(10, 5)

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2}},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if !errors.Is(err, user.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance mutated on failed order: %s", got)
	}
	if got := fx.catalog.items[fx.productID].Stock; got != 5 {
		t.Fatalf("stock mutated on failed order: %d", got)
	}
	if len(fx.repo.orders) != 0 {
		t.Fatal("order persisted despite failure")
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	fx := newFixture(1000, 1)

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2}},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if !errors.Is(err, catalog.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance mutated on failed order: %s", got)
	}
	if len(fx.ledger.adjustments) != 0 {
		t.Fatal("ledger touched before cart validation completed")
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	fx := newFixture(100, 5)

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	fx := newFixture(100, 5)

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: uuid.New(), Quantity: 1}},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if !errors.Is(err, catalog.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestPlaceOrderLocationFallsBackToProfile(t *testing.T) {
	fx := newFixture(100, 5)
	u := fx.ledger.users[fx.userID]
	u.Longitude.Float64, u.Longitude.Valid = 71.4, true
	u.Latitude.Float64, u.Latitude.Valid = 51.1, true

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1}},
		PaymentMethod: MethodCredits,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if o.Longitude != 71.4 || o.Latitude != 51.1 {
		t.Fatalf("expected profile location on order, got %f/%f", o.Longitude, o.Latitude)
	}
}

func TestPlaceOrderLocationRequired(t *testing.T) {
	fx := newFixture(100, 5)

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1}},
		PaymentMethod: MethodCredits,
	})
	if !errors.Is(err, ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}
}

func TestPlaceOrderTransferRequiresProof(t *testing.T) {
	fx := newFixture(100, 5)

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1}},
		PaymentMethod: MethodTransfer,
		Location:      testPoint,
	})
	if !errors.Is(err, ErrProofRequired) {
		t.Fatalf("expected ErrProofRequired, got %v", err)
	}
}

func TestPlaceOrderTransferStaysPending(t *testing.T) {
	fx := newFixture(100, 5)

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2}},
		PaymentMethod: MethodTransfer,
		Location:      testPoint,
		Proof: &ProofFile{
			Filename:    "receipt.jpg",
			ContentType: "image/jpeg",
			Reader:      strings.NewReader("jpeg-bytes"),
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if o.PaymentStatus != PaymentPending {
		t.Fatalf("expected payment pending for transfer order, got %s", o.PaymentStatus)
	}
	if !o.PaymentScreenshot.Valid || o.PaymentScreenshot.String == "" {
		t.Fatal("expected screenshot URL on transfer order")
	}
	if fx.uploader.calls != 1 || fx.uploader.lastCategory != "screenshots" {
		t.Fatalf("expected one screenshot upload, got %d (%s)", fx.uploader.calls, fx.uploader.lastCategory)
	}
	// Transfer orders never debit the ledger at placement.
	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", got)
	}
	// Stock is still reserved.
	if got := fx.catalog.items[fx.productID].Stock; got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
}

func TestPlaceOrderUploadFailure(t *testing.T) {
	fx := newFixture(100, 5)
	fx.uploader.err = upload.ErrUploadFailed

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1}},
		PaymentMethod: MethodTransfer,
		Location:      testPoint,
		Proof: &ProofFile{
			Filename:    "receipt.jpg",
			ContentType: "image/jpeg",
			Reader:      strings.NewReader("jpeg-bytes"),
		},
	})
	if !errors.Is(err, upload.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}

	if got := fx.catalog.items[fx.productID].Stock; got != 5 {
		t.Fatalf("stock mutated on failed upload: %d", got)
	}
	if len(fx.repo.orders) != 0 {
		t.Fatal("order persisted despite failed upload")
	}
}

func TestPlaceOrderRollbackOnStockFailure(t *testing.T) {
	fx := newFixture(100, 5)

	secondID := uuid.New()
	fx.catalog.items[secondID] = &catalog.Item{
		ID: secondID, Kind: catalog.KindProduct, Name: "Filters", Price: decimal.NewFromInt(5), Stock: 10, Available: true,
	}
	fx.catalog.adjustErrs = map[uuid.UUID]error{secondID: catalog.ErrInsufficientStock}

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items: []ItemInput{
			{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2},
			{ItemType: catalog.KindProduct, ItemID: secondID, Quantity: 1},
		},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if !errors.Is(err, catalog.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// First line was decremented, then restored.
	if got := fx.catalog.items[fx.productID].Stock; got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
	// Debited credits refunded in full.
	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance restored to 100, got %s", got)
	}
	if len(fx.repo.orders) != 0 {
		t.Fatal("order persisted despite rollback")
	}
}

func TestPlaceOrderRollbackOnPersistFailure(t *testing.T) {
	fx := newFixture(100, 5)
	fx.repo.createErr = errors.New("db down")

	_, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2}},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if got := fx.catalog.items[fx.productID].Stock; got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance restored to 100, got %s", got)
	}
}

func TestRejectOrderRefundsCreditsOnce(t *testing.T) {
	fx := newFixture(100, 5)
	admin := user.Actor{UserID: uuid.New(), IsAdmin: true}

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 2}},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	rejected, err := fx.svc.UpdateOrderStatus(context.Background(), admin, o.ID, StatusRejected)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected refund to 100, got %s", got)
	}

	// A repeated rejection must not credit the user again.
	if _, err := fx.svc.UpdateOrderStatus(context.Background(), admin, o.ID, StatusRejected); err != nil {
		t.Fatalf("second reject failed: %v", err)
	}
	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("double refund: balance %s", got)
	}
}

func TestRejectTransferOrderNoRefund(t *testing.T) {
	fx := newFixture(100, 5)
	admin := user.Actor{UserID: uuid.New(), IsAdmin: true}

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1}},
		PaymentMethod: MethodTransfer,
		Location:      testPoint,
		Proof: &ProofFile{
			Filename:    "receipt.png",
			ContentType: "image/png",
			Reader:      strings.NewReader("png-bytes"),
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if _, err := fx.svc.UpdateOrderStatus(context.Background(), admin, o.ID, StatusRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("transfer order rejection touched the ledger: %s", got)
	}
}

func TestUpdateOrderStatusRequiresAdmin(t *testing.T) {
	fx := newFixture(100, 5)

	_, err := fx.svc.UpdateOrderStatus(context.Background(), fx.actor(), uuid.New(), StatusConfirmed)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateOrderStatusRejectsInvalidTarget(t *testing.T) {
	fx := newFixture(100, 5)
	admin := user.Actor{UserID: uuid.New(), IsAdmin: true}

	_, err := fx.svc.UpdateOrderStatus(context.Background(), admin, uuid.New(), StatusPending)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestVerifyPaymentLeavesLedgerAlone(t *testing.T) {
	fx := newFixture(100, 5)
	admin := user.Actor{UserID: uuid.New(), IsAdmin: true}

	o, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1}},
		PaymentMethod: MethodTransfer,
		Location:      testPoint,
		Proof: &ProofFile{
			Filename:    "receipt.jpg",
			ContentType: "image/jpeg",
			Reader:      strings.NewReader("jpeg-bytes"),
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	verified, err := fx.svc.VerifyPayment(context.Background(), admin, o.ID, PaymentVerified)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verified.PaymentStatus != PaymentVerified {
		t.Fatalf("expected verified, got %s", verified.PaymentStatus)
	}
	if got := fx.ledger.users[fx.userID].CreditBalance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("order payment verification touched the ledger: %s", got)
	}
}

func TestNearbyOrders(t *testing.T) {
	fx := newFixture(100, 5)
	admin := user.Actor{UserID: uuid.New(), IsAdmin: true}

	first, err := fx.svc.PlaceOrder(context.Background(), fx.actor(), PlaceOrderRequest{
		Items:         []ItemInput{{ItemType: catalog.KindProduct, ItemID: fx.productID, Quantity: 1}},
		PaymentMethod: MethodCredits,
		Location:      testPoint,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	fx.geo.results = []uuid.UUID{first.ID}

	orders, err := fx.svc.GetNearbyOrders(context.Background(), admin, *testPoint, 0)
	if err != nil {
		t.Fatalf("nearby failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != first.ID {
		t.Fatalf("expected the placed order, got %d results", len(orders))
	}

	if _, err := fx.svc.GetNearbyOrders(context.Background(), fx.actor(), *testPoint, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := fx.svc.GetNearbyOrders(context.Background(), admin, user.GeoPoint{}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero point, got %v", err)
	}
}

func TestNearbyOrdersDisabledWithoutIndex(t *testing.T) {
	fx := newFixture(100, 5)
	fx.svc = NewService(fx.repo, fx.catalog, fx.ledger, fx.uploader, nil)
	admin := user.Actor{UserID: uuid.New(), IsAdmin: true}

	_, err := fx.svc.GetNearbyOrders(context.Background(), admin, *testPoint, 100)
	if !errors.Is(err, ErrNearbyDisabled) {
		t.Fatalf("expected ErrNearbyDisabled, got %v", err)
	}
}
