package httpx

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/boutique-cartes/backend/internal/catalog"
	"github.com/boutique-cartes/backend/internal/mail"
	"github.com/boutique-cartes/backend/internal/orders"
	"github.com/boutique-cartes/backend/internal/payments"
	"github.com/boutique-cartes/backend/internal/stock"
)

type fakeCatalogStore struct {
	cards     []catalog.Card
	votedBy   map[string]bool
	createErr error
	listErr   error
}

func (f *fakeCatalogStore) List(ctx context.Context) ([]catalog.Card, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.cards == nil {
		return []catalog.Card{}, nil
	}
	return f.cards, nil
}

func (f *fakeCatalogStore) Create(ctx context.Context, c catalog.Card) (catalog.Card, error) {
	if f.createErr != nil {
		return catalog.Card{}, f.createErr
	}
	c.ID = "card-1"
	c.Disponible = catalog.AvailabilityPercent(c.Stock, c.StockReduc)
	f.cards = append(f.cards, c)
	return c, nil
}

func (f *fakeCatalogStore) Patch(ctx context.Context, id string, fields map[string]any) (catalog.Card, error) {
	for _, c := range f.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return catalog.Card{}, catalog.ErrNotFound
}

func (f *fakeCatalogStore) AddReview(ctx context.Context, productID string, rev catalog.Review) (float64, []catalog.Review, error) {
	var found *catalog.Card
	for i := range f.cards {
		if f.cards[i].ID == productID {
			found = &f.cards[i]
			break
		}
	}
	if found == nil {
		return 0, nil, catalog.ErrNotFound
	}
	if f.votedBy == nil {
		f.votedBy = map[string]bool{}
	}
	if f.votedBy[rev.UserID] {
		return 0, nil, catalog.ErrAlreadyVoted
	}
	f.votedBy[rev.UserID] = true
	found.Reviews = append(found.Reviews, rev)
	return catalog.AverageStars(found.Reviews), found.Reviews, nil
}

type fakeOrderStore struct {
	orders    []orders.Order
	purchases []orders.Purchase
	requests  []orders.SpecialRequest
	buyers    []orders.Buyer
	err       error
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, o orders.Order) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	o.ID = "order-1"
	f.orders = append(f.orders, o)
	return o.ID, nil
}

func (f *fakeOrderStore) CreatePurchase(ctx context.Context, p orders.Purchase) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	p.ID = "purchase-1"
	f.purchases = append(f.purchases, p)
	return p.ID, nil
}

func (f *fakeOrderStore) CreateSpecialRequest(ctx context.Context, sr orders.SpecialRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	sr.ID = "request-1"
	if sr.DeliveryTime == "" {
		sr.DeliveryTime = orders.DefaultDeliveryTime
	}
	f.requests = append(f.requests, sr)
	return sr.ID, nil
}

func (f *fakeOrderStore) ListSpecialRequests(ctx context.Context) ([]orders.SpecialRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.requests == nil {
		return []orders.SpecialRequest{}, nil
	}
	return f.requests, nil
}

func (f *fakeOrderStore) BuyersForProduct(ctx context.Context, title string) ([]orders.Buyer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.buyers, nil
}

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(m mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeVerifier struct {
	userID string
}

func (f *fakeVerifier) Verify(token string) (string, error) {
	if f.userID == "" {
		return "", errors.New("invalid token")
	}
	return f.userID, nil
}

type fakePublisher struct {
	published [][]byte
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.published = append(f.published, value)
}

type fakePayGateway struct {
	sessions  map[string]*payments.Session
	created   []payments.Item
	createErr error
	webhookEv payments.WebhookEvent
}

func (f *fakePayGateway) CreateSession(ctx context.Context, items []payments.Item, delivery string) (*payments.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, items...)
	return &payments.Session{ID: "cs_new", ClientSecret: "secret_123"}, nil
}

func (f *fakePayGateway) GetSession(ctx context.Context, id string) (*payments.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, payments.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakePayGateway) ParseWebhook(payload []byte, signature string) (payments.WebhookEvent, error) {
	if f.webhookEv.ID == "" {
		return payments.WebhookEvent{}, errors.New("bad signature")
	}
	return f.webhookEv, nil
}

type fakeReleaser struct {
	res   stock.Result
	err   error
	calls []string
}

func (f *fakeReleaser) Release(ctx context.Context, sessionID string) (stock.Result, error) {
	f.calls = append(f.calls, sessionID)
	return f.res, f.err
}

type fakeReserver struct {
	items []payments.Item
	err   error
}

func (f *fakeReserver) Reserve(ctx context.Context, items []payments.Item) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, items...)
	return nil
}
