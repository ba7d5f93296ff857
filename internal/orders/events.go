package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderRecorded    = "OrderRecorded"
	EventSessionExpired   = "CheckoutSessionExpired"
	EventSessionCompleted = "CheckoutSessionCompleted"
	EventStockReleased    = "StockReleased"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderRecordedPayload struct {
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`
	Items         []Item `json:"items"`
}

type SessionExpiredPayload struct {
	SessionID string `json:"session_id"`
}

type SessionCompletedPayload struct {
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
}

type StockReleasedPayload struct {
	SessionID  string `json:"session_id"`
	Released   bool   `json:"released"`
	ItemsCount int    `json:"items_count"`
}
