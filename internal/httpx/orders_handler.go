package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/boutique-cartes/backend/internal/kafka"
	"github.com/boutique-cartes/backend/internal/mail"
	"github.com/boutique-cartes/backend/internal/orders"
)

// OrderStore is implemented by orders.Repo and by fakes in tests.
type OrderStore interface {
	CreateOrder(ctx context.Context, o orders.Order) (string, error)
	CreatePurchase(ctx context.Context, p orders.Purchase) (string, error)
	CreateSpecialRequest(ctx context.Context, sr orders.SpecialRequest) (string, error)
	ListSpecialRequests(ctx context.Context) ([]orders.SpecialRequest, error)
	BuyersForProduct(ctx context.Context, title string) ([]orders.Buyer, error)
}

// EventPublisher matches kafka.Producer's fire-and-forget Publish.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Repo     OrderStore
	Mail     mail.Sender
	Producer EventPublisher
	Service  string
	Log      *zap.SugaredLogger
}

type addOrderReq struct {
	CustomerEmail string         `json:"customer_email"`
	DisplayName   string         `json:"displayName"`
	DeliveryInfo  map[string]any `json:"deliveryInfo"`
	Items         []orders.Item  `json:"items"`
}

type completePurchaseReq struct {
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	PhotoURL    string        `json:"photoURL"`
	Items       []orders.Item `json:"items"`
}

type savePurchaseReq struct {
	Email string        `json:"email"`
	Items []orders.Item `json:"items"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/add-order", h.addOrder)
	r.Post("/api/complete-purchase", h.completePurchase)
	r.Post("/api/save-purchase", h.savePurchase)
}

func (h *OrdersHandler) addOrder(w http.ResponseWriter, r *http.Request) {
	var req addOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerEmail == "" || len(req.DeliveryInfo) == 0 || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, err := h.Repo.CreateOrder(ctx, orders.Order{
		CustomerEmail: req.CustomerEmail,
		DisplayName:   req.DisplayName,
		DeliveryInfo:  req.DeliveryInfo,
		Items:         req.Items,
	})
	if err != nil {
		h.Log.Errorw("add order", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publishRecorded(r, orderID, req.CustomerEmail, req.Items)
	writeJSON(w, http.StatusOK, map[string]string{"message": "commande enregistrée", "orderId": orderID})
}

func (h *OrdersHandler) completePurchase(w http.ResponseWriter, r *http.Request) {
	var req completePurchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID, err := h.Repo.CreateOrder(ctx, orders.Order{
		CustomerEmail: req.Email,
		DisplayName:   req.DisplayName,
		Items:         req.Items,
	})
	if err != nil {
		h.Log.Errorw("complete purchase: store", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.publishRecorded(r, orderID, req.Email, req.Items)

	subject, html, err := mail.OrderConfirmation(req.Items)
	if err == nil {
		err = h.Mail.Send(mail.Message{To: req.Email, Subject: subject, HTML: html})
	}
	if err != nil {
		// The order is already durable; the caller still gets a 500,
		// partial success is not encoded in the response.
		h.Log.Errorw("complete purchase: mail", "order_id", orderID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "achat confirmé"})
}

func (h *OrdersHandler) savePurchase(w http.ResponseWriter, r *http.Request) {
	var req savePurchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Repo.CreatePurchase(ctx, orders.Purchase{Email: req.Email, Items: req.Items}); err != nil {
		h.Log.Errorw("save purchase", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "panier enregistré"})
}

func (h *OrdersHandler) publishRecorded(r *http.Request, orderID, email string, items []orders.Item) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderRecorded,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderRecordedPayload{
			OrderID: orderID, CustomerEmail: email, Items: items,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderRecorded)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
