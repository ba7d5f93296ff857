package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/payments"
	"github.com/boutique-cartes/backend/internal/stock"
)

func newPaymentsRouter(gw *fakePayGateway, reserver *fakeReserver, releaser *fakeReleaser, pub *fakePublisher) http.Handler {
	h := &PaymentsHandler{
		Gateway:  gw,
		Webhook:  gw,
		Stock:    reserver,
		Releaser: releaser,
		Producer: pub,
		Service:  "test-api",
		Log:      zap.NewNop().Sugar(),
	}
	r := NewRouter()
	h.Register(r)
	return r
}

func TestCreatePaymentIntentRejectsNonArrayItems(t *testing.T) {
	h := newPaymentsRouter(&fakePayGateway{}, &fakeReserver{}, &fakeReleaser{}, &fakePublisher{})

	rec := postJSON(h, "/api/create-payment-intent", `{"items":"oops"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-array items: status = %d, want 400", rec.Code)
	}
	rec = postJSON(h, "/api/create-payment-intent", `{"items":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty items: status = %d, want 400", rec.Code)
	}
}

func TestCreatePaymentIntentReservesThenCreatesSession(t *testing.T) {
	gw := &fakePayGateway{}
	reserver := &fakeReserver{}
	h := newPaymentsRouter(gw, reserver, &fakeReleaser{}, &fakePublisher{})

	body := `{"items":[{"id":"c1","titre":"Carte","prix":12.5,"quantite":2}],"delivery":"standard"}`
	rec := postJSON(h, "/api/create-payment-intent", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["clientSecret"] != "secret_123" {
		t.Errorf("clientSecret = %q, want secret_123", resp["clientSecret"])
	}
	if len(reserver.items) != 1 || reserver.items[0].ID != "c1" || reserver.items[0].Quantite != 2 {
		t.Errorf("reserved items = %+v, want c1 x2", reserver.items)
	}
}

func TestOrderDetails(t *testing.T) {
	gw := &fakePayGateway{sessions: map[string]*payments.Session{
		"cs_1": {ID: "cs_1", PaymentStatus: "paid", AmountTotal: 2500, Currency: "eur", CustomerEmail: "a@b.fr"},
	}}
	h := newPaymentsRouter(gw, &fakeReserver{}, &fakeReleaser{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/order-details", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing session_id: status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/order-details?session_id=cs_missing", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/order-details?session_id=cs_1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp sessionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PaymentStatus != "paid" || resp.AmountTotal != 2500 {
		t.Errorf("summary = %+v", resp)
	}
}

func TestReleaseStockEndpoint(t *testing.T) {
	releaser := &fakeReleaser{res: stock.Result{Released: true, ItemsCount: 2}}
	h := newPaymentsRouter(&fakePayGateway{}, &fakeReserver{}, releaser, &fakePublisher{})

	rec := postJSON(h, "/api/release-stock", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing sessionId: status = %d, want 400", rec.Code)
	}

	rec = postJSON(h, "/api/release-stock", `{"sessionId":"cs_1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"released":true`) || !strings.Contains(rec.Body.String(), `"itemsCount":2`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if len(releaser.calls) != 1 || releaser.calls[0] != "cs_1" {
		t.Errorf("release calls = %v", releaser.calls)
	}
}

func TestReleaseStockSessionNotFound(t *testing.T) {
	releaser := &fakeReleaser{err: payments.ErrSessionNotFound}
	h := newPaymentsRouter(&fakePayGateway{}, &fakeReserver{}, releaser, &fakePublisher{})

	rec := postJSON(h, "/api/release-stock", `{"sessionId":"cs_gone"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWebhookExpiredPublishesEvent(t *testing.T) {
	gw := &fakePayGateway{webhookEv: payments.WebhookEvent{
		ID: "evt_1", Type: payments.WebhookSessionExpired, SessionID: "cs_1",
	}}
	pub := &fakePublisher{}
	h := newPaymentsRouter(gw, &fakeReserver{}, &fakeReleaser{}, pub)

	rec := postJSON(h, "/api/payment-webhook", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(pub.published) != 1 {
		t.Fatalf("events published = %d, want 1", len(pub.published))
	}
	if !strings.Contains(string(pub.published[0]), "cs_1") {
		t.Errorf("event payload = %s", pub.published[0])
	}
}

func TestWebhookBadSignature(t *testing.T) {
	h := newPaymentsRouter(&fakePayGateway{}, &fakeReserver{}, &fakeReleaser{}, &fakePublisher{})
	rec := postJSON(h, "/api/payment-webhook", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
