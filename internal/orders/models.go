package orders

import "time"

type Item struct {
	ID       string  `json:"id"`
	Titre    string  `json:"titre"`
	Prix     float64 `json:"prix"`
	Quantite int     `json:"quantite"`
}

// Order is immutable once written.
type Order struct {
	ID            string         `json:"id"`
	CustomerEmail string         `json:"customer_email"`
	DisplayName   string         `json:"display_name,omitempty"`
	DeliveryInfo  map[string]any `json:"delivery_info,omitempty"`
	Items         []Item         `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Purchase is a cart snapshot recorded outside the order flow.
type Purchase struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

type SpecialRequest struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	ProductTitle string    `json:"productTitle"`
	DeliveryTime string    `json:"deliveryTime"`
	CreatedAt    time.Time `json:"timestamp"`
}

// DefaultDeliveryTime is stamped on special requests that come in
// without one.
const DefaultDeliveryTime = "2 à 3 semaines"

// Buyer is one hit of the buyer scan: who ordered a given product and
// with which delivery details.
type Buyer struct {
	Email        string         `json:"email"`
	DisplayName  string         `json:"display_name,omitempty"`
	DeliveryInfo map[string]any `json:"delivery_info,omitempty"`
	OrderedAt    time.Time      `json:"ordered_at"`
}
