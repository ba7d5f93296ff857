package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/catalog"
)

func newRatingRouter(store *fakeCatalogStore, userID string) http.Handler {
	h := &RatingHandler{Store: store, Auth: &fakeVerifier{userID: userID}, Log: zap.NewNop().Sugar()}
	r := NewRouter()
	h.Register(r)
	return r
}

func rate(t *testing.T, h http.Handler, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/rate-product", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateProductRequiresToken(t *testing.T) {
	h := newRatingRouter(&fakeCatalogStore{}, "u1")
	rec := rate(t, h, "", `{"rating":5,"productId":"card-1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRateProductInvalidToken(t *testing.T) {
	h := newRatingRouter(&fakeCatalogStore{}, "")
	rec := rate(t, h, "bad", `{"rating":5,"productId":"card-1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRateProductValidation(t *testing.T) {
	h := newRatingRouter(&fakeCatalogStore{}, "u1")

	if rec := rate(t, h, "tok", `{"rating":5}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing productId: status = %d, want 400", rec.Code)
	}
	if rec := rate(t, h, "tok", `{"rating":6,"productId":"card-1"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("rating out of range: status = %d, want 400", rec.Code)
	}
	if rec := rate(t, h, "tok", `{"productId":"card-1"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing rating: status = %d, want 400", rec.Code)
	}
}

func TestRateProductUnknownProduct(t *testing.T) {
	h := newRatingRouter(&fakeCatalogStore{}, "u1")
	rec := rate(t, h, "tok", `{"rating":4,"productId":"ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRateProductDuplicateVote(t *testing.T) {
	store := &fakeCatalogStore{cards: []catalog.Card{{ID: "card-1"}}}
	h := newRatingRouter(store, "u1")

	rec := rate(t, h, "tok", `{"rating":5,"comment":"superbe","productId":"card-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first vote: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		NewAverage float64          `json:"newAverage"`
		Reviews    []catalog.Review `json:"reviews"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.NewAverage != 5 || len(resp.Reviews) != 1 {
		t.Errorf("got average %v with %d reviews, want 5 with 1", resp.NewAverage, len(resp.Reviews))
	}

	rec = rate(t, h, "tok", `{"rating":3,"productId":"card-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("second vote: status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already voted") {
		t.Errorf("body = %s, want already voted", rec.Body.String())
	}
	if got := len(store.cards[0].Reviews); got != 1 {
		t.Errorf("review count = %d, want unchanged 1", got)
	}
}
