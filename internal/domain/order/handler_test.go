package order

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-api/internal/domain/user"
	"github.com/orderhub/orderhub-api/internal/middleware"
	"github.com/orderhub/orderhub-api/internal/pkg/jwt"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(t *testing.T, fx *fixture) (http.Handler, string, string) {
	t.Helper()

	jwtSvc := jwt.NewService("order-handler-secret", time.Hour)
	userToken, err := jwtSvc.GenerateAccessToken(fx.userID, string(user.RoleUser))
	if err != nil {
		t.Fatalf("generate user token failed: %v", err)
	}

	adminID := fx.userID
	adminToken, err := jwtSvc.GenerateAccessToken(adminID, string(user.RoleAdmin))
	if err != nil {
		t.Fatalf("generate admin token failed: %v", err)
	}

	h := NewHandler(fx.svc)
	r := chi.NewRouter()
	r.Mount("/api/v1/orders", h.Routes(middleware.Auth(jwtSvc)))
	return r, userToken, adminToken
}

func doJSON(t *testing.T, handler http.Handler, token, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload failed: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var out apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response failed: %v; body=%s", err, rec.Body.String())
	}
	return out
}

func TestPlaceOrderEndpointCredits(t *testing.T) {
	fx := newFixture(100, 5)
	r, token, _ := setupRouter(t, fx)

	rec := doJSON(t, r, token, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{
			{"item_type": "product", "item_id": fx.productID.String(), "quantity": 2},
		},
		"payment_method": "credits",
		"location":       map[string]float64{"longitude": 76.9, "latitude": 43.2},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeResponse(t, rec)
	if !body.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}

	var placed Order
	if err := json.Unmarshal(body.Data, &placed); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if !placed.TotalAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected total 60, got %s", placed.TotalAmount)
	}
	if placed.PaymentStatus != PaymentVerified {
		t.Fatalf("expected verified payment, got %s", placed.PaymentStatus)
	}
}

func TestPlaceOrderEndpointTransferMultipart(t *testing.T) {
	fx := newFixture(100, 5)
	r, token, _ := setupRouter(t, fx)

	items, _ := json.Marshal([]map[string]interface{}{
		{"item_type": "product", "item_id": fx.productID.String(), "quantity": 1},
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("items", string(items))
	mw.WriteField("payment_method", "transfer")
	mw.WriteField("longitude", "76.9")
	mw.WriteField("latitude", "43.2")
	part, _ := mw.CreateFormFile("screenshot", "receipt.jpg")
	part.Write([]byte("jpeg-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeResponse(t, rec)
	var placed Order
	if err := json.Unmarshal(body.Data, &placed); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if placed.PaymentStatus != PaymentPending {
		t.Fatalf("expected pending payment, got %s", placed.PaymentStatus)
	}
	if fx.uploader.calls != 1 {
		t.Fatalf("expected one upload, got %d", fx.uploader.calls)
	}
}

func TestPlaceOrderEndpointInsufficientCredits(t *testing.T) {
	fx := newFixture(10, 5)
	r, token, _ := setupRouter(t, fx)

	rec := doJSON(t, r, token, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{
			{"item_type": "product", "item_id": fx.productID.String(), "quantity": 2},
		},
		"payment_method": "credits",
		"location":       map[string]float64{"longitude": 76.9, "latitude": 43.2},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeResponse(t, rec)
	if body.Error == nil || body.Error.Code != "INSUFFICIENT_CREDITS" {
		t.Fatalf("expected INSUFFICIENT_CREDITS, got %s", rec.Body.String())
	}
}

func TestPlaceOrderEndpointValidation(t *testing.T) {
	fx := newFixture(100, 5)
	r, token, _ := setupRouter(t, fx)

	rec := doJSON(t, r, token, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{
			{"item_type": "product", "item_id": fx.productID.String(), "quantity": 1},
		},
		"payment_method": "cash",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown payment method, got %d", rec.Code)
	}
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	fx := newFixture(100, 5)
	r, _, _ := setupRouter(t, fx)

	rec := doJSON(t, r, "", http.MethodGet, "/api/v1/orders/", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	fx := newFixture(100, 5)
	r, userToken, adminToken := setupRouter(t, fx)

	rec := doJSON(t, r, userToken, http.MethodGet, "/api/v1/orders/all", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	rec = doJSON(t, r, adminToken, http.MethodGet, "/api/v1/orders/all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	fx := newFixture(100, 5)
	r, userToken, adminToken := setupRouter(t, fx)

	rec := doJSON(t, r, userToken, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{
			{"item_type": "product", "item_id": fx.productID.String(), "quantity": 1},
		},
		"payment_method": "credits",
		"location":       map[string]float64{"longitude": 76.9, "latitude": 43.2},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("place order failed: %d", rec.Code)
	}
	var placed Order
	json.Unmarshal(decodeResponse(t, rec).Data, &placed)

	rec = doJSON(t, r, adminToken, http.MethodPatch, "/api/v1/orders/"+placed.ID.String()+"/status", map[string]string{
		"status": "confirmed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, adminToken, http.MethodPatch, "/api/v1/orders/"+placed.ID.String()+"/status", map[string]string{
		"status": "shipped",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d", rec.Code)
	}
}
