package payment

import (
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPaymentJSONIncludesRejectionReason(t *testing.T) {
	p := Payment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Amount:     decimal.NewFromInt(500),
		Screenshot: "https://cdn.test/payments/proof.jpg",
		Status:     StatusRejected,
		Reason:     sql.NullString{String: "screenshot unreadable", Valid: true},
	}

	data, err := json.Marshal(&p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out struct {
		Status Status `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Status != StatusRejected || out.Reason != "screenshot unreadable" {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestPaymentJSONOmitsEmptyReason(t *testing.T) {
	p := Payment{ID: uuid.New(), Status: StatusPending}

	data, err := json.Marshal(&p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"reason"`) {
		t.Fatalf("pending payment leaked a reason field: %s", data)
	}
}
