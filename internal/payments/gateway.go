package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrSessionNotFound = errors.New("session not found")

// Item mirrors one cart line as it travels through checkout metadata.
type Item struct {
	ID       string  `json:"id"`
	Titre    string  `json:"titre"`
	Prix     float64 `json:"prix"`
	Quantite int     `json:"quantite"`
}

// Session is the gateway-owned checkout record, normalized to the few
// fields this application reads. The application never mutates it.
type Session struct {
	ID            string
	ClientSecret  string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

type Gateway interface {
	CreateSession(ctx context.Context, items []Item, delivery string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// WebhookEvent is a gateway notification normalized for routing.
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
}

const (
	WebhookSessionCompleted = "checkout.session.completed"
	WebhookSessionExpired   = "checkout.session.expired"
)

// Metadata keys written at session creation and read back by the
// release path.
const (
	MetaStockReserved = "stockReserved"
	MetaItems         = "items"
	MetaDelivery      = "delivery"
)

func ItemsToMetadata(items []Item) (string, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func ItemsFromMetadata(md map[string]string) ([]Item, error) {
	raw, ok := md[MetaItems]
	if !ok || raw == "" {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode items metadata: %w", err)
	}
	return items, nil
}

// StockReserved reports whether the session recorded a reservation at
// intent-creation time.
func StockReserved(md map[string]string) bool {
	return md[MetaStockReserved] == "true"
}
