package payments

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway drives embedded Checkout sessions in EUR.
type StripeGateway struct {
	sc            *client.API
	returnURL     string
	webhookSecret string
}

func NewStripeGateway(key, returnURL, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(key, nil)
	return &StripeGateway{sc: sc, returnURL: returnURL, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateSession(ctx context.Context, items []Item, delivery string) (*Session, error) {
	line := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, it := range items {
		line = append(line, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantite)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyEUR)),
				UnitAmount: stripe.Int64(int64(math.Round(it.Prix * 100))),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Titre),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		UIMode:    stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		ReturnURL: stripe.String(g.returnURL),
		LineItems: line,
	}
	params.Context = ctx

	meta, err := ItemsToMetadata(items)
	if err != nil {
		return nil, err
	}
	params.AddMetadata(MetaItems, meta)
	params.AddMetadata(MetaStockReserved, "true")
	if delivery != "" {
		params.AddMetadata(MetaDelivery, delivery)
	}

	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripe(s), nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sc.CheckoutSessions.Get(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) {
			if serr.HTTPStatusCode == http.StatusNotFound || serr.Code == stripe.ErrorCodeResourceMissing {
				return nil, ErrSessionNotFound
			}
		}
		return nil, err
	}
	return fromStripe(s), nil
}

// ParseWebhook verifies the signature and reduces the event to what the
// routing layer needs.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	ev, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return WebhookEvent{}, err
	}
	out := WebhookEvent{ID: ev.ID, Type: string(ev.Type)}
	switch out.Type {
	case WebhookSessionCompleted, WebhookSessionExpired:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return WebhookEvent{}, err
		}
		out.SessionID = s.ID
	}
	return out, nil
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		ClientSecret:  s.ClientSecret,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}
