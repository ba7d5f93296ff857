package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/boutique-cartes/backend/internal/kafka"
	"github.com/boutique-cartes/backend/internal/orders"
	"github.com/boutique-cartes/backend/internal/payments"
	"github.com/boutique-cartes/backend/internal/redisx"
	"github.com/boutique-cartes/backend/internal/stock"
)

type StockReserver interface {
	Reserve(ctx context.Context, items []payments.Item) error
}

type StockReleaser interface {
	Release(ctx context.Context, sessionID string) (stock.Result, error)
}

type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (payments.WebhookEvent, error)
}

type PaymentsHandler struct {
	Gateway  payments.Gateway
	Webhook  WebhookParser
	Stock    StockReserver
	Releaser StockReleaser
	Redis    *redis.Client // optional session-summary cache
	Producer EventPublisher
	Service  string
	Log      *zap.SugaredLogger
}

type createIntentReq struct {
	Items    []payments.Item `json:"items"`
	Delivery string          `json:"delivery"`
}

type releaseStockReq struct {
	SessionID string `json:"sessionId"`
}

type sessionSummary struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/api/create-payment-intent", h.createPaymentIntent)
	r.Get("/api/order-details", h.orderDetails)
	r.Post("/api/release-stock", h.releaseStock)
	r.Post("/api/payment-webhook", h.webhook)
}

func (h *PaymentsHandler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "items must be an array")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must be a non-empty array")
		return
	}
	for _, it := range req.Items {
		if it.ID == "" || it.Quantite <= 0 {
			writeError(w, http.StatusBadRequest, "each item needs an id and a positive quantite")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Reserve first so the session metadata's stockReserved flag is
	// true by the time the session exists.
	if err := h.Stock.Reserve(ctx, req.Items); err != nil {
		h.Log.Errorw("reserve stock", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sess, err := h.Gateway.CreateSession(ctx, req.Items, req.Delivery)
	if err != nil {
		h.Log.Errorw("create checkout session", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": sess.ClientSecret})
}

func (h *PaymentsHandler) orderDetails(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeySessionSummary, sessionID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	sess, err := h.Gateway.GetSession(ctx, sessionID)
	if errors.Is(err, payments.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.Log.Errorw("get session", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := sessionSummary{
		ID:            sess.ID,
		PaymentStatus: sess.PaymentStatus,
		AmountTotal:   sess.AmountTotal,
		Currency:      sess.Currency,
		CustomerEmail: sess.CustomerEmail,
	}
	if h.Redis != nil {
		b, _ := json.Marshal(summary)
		_ = h.Redis.Set(ctx, key, b, redisx.TTLSessionCache).Err()
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *PaymentsHandler) releaseStock(w http.ResponseWriter, r *http.Request) {
	var req releaseStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Releaser.Release(ctx, req.SessionID)
	if errors.Is(err, payments.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.Log.Errorw("release stock", "session_id", req.SessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "stock release failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable payload")
		return
	}
	ev, err := h.Webhook.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "signature verification failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "webhook", ev.ID)
		if exists, _ := redisx.Exists(ctx, h.Redis, dkey); exists {
			writeJSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}
		_ = h.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	switch ev.Type {
	case payments.WebhookSessionExpired:
		h.publishExpired(r, ev.SessionID)
	case payments.WebhookSessionCompleted:
		h.refreshSessionCache(ctx, ev.SessionID)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *PaymentsHandler) publishExpired(r *http.Request, sessionID string) {
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventSessionExpired,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: sessionID,
		Payload:       kafkax.MustMarshal(orders.SessionExpiredPayload{SessionID: sessionID}),
	}
	h.Producer.Publish(orders.PartitionKey(sessionID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventSessionExpired)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *PaymentsHandler) refreshSessionCache(ctx context.Context, sessionID string) {
	if h.Redis == nil || sessionID == "" {
		return
	}
	sess, err := h.Gateway.GetSession(ctx, sessionID)
	if err != nil {
		h.Log.Warnw("refresh session cache", "session_id", sessionID, "err", err)
		return
	}
	b, _ := json.Marshal(sessionSummary{
		ID:            sess.ID,
		PaymentStatus: sess.PaymentStatus,
		AmountTotal:   sess.AmountTotal,
		Currency:      sess.Currency,
		CustomerEmail: sess.CustomerEmail,
	})
	key := fmt.Sprintf(redisx.KeySessionSummary, sessionID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLSessionCache).Err()
}
