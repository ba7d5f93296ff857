package orders

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CreateOrder(ctx context.Context, o Order) (string, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	return o.ID, r.insert(ctx, "orders", o.ID, o, o.CreatedAt)
}

func (r *Repo) CreatePurchase(ctx context.Context, p Purchase) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	return p.ID, r.insert(ctx, "purchases", p.ID, p, p.CreatedAt)
}

func (r *Repo) CreateSpecialRequest(ctx context.Context, sr SpecialRequest) (string, error) {
	sr.ID = uuid.NewString()
	sr.CreatedAt = time.Now().UTC()
	if strings.TrimSpace(sr.DeliveryTime) == "" {
		sr.DeliveryTime = DefaultDeliveryTime
	}
	return sr.ID, r.insert(ctx, "special_requests", sr.ID, sr, sr.CreatedAt)
}

func (r *Repo) insert(ctx context.Context, table, id string, doc any, at time.Time) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx,
		`INSERT INTO `+table+`(id, doc, created_at) VALUES ($1, $2, $3)`, id, b, at)
	return err
}

func (r *Repo) ListSpecialRequests(ctx context.Context) ([]SpecialRequest, error) {
	rows, err := r.DB.Query(ctx, `SELECT doc FROM special_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SpecialRequest, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var sr SpecialRequest
		if err := json.Unmarshal(raw, &sr); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// BuyersForProduct scans order documents for a product title. Linear
// over the orders table, fine at this catalog's volume.
func (r *Repo) BuyersForProduct(ctx context.Context, title string) ([]Buyer, error) {
	rows, err := r.DB.Query(ctx, `SELECT doc FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Buyer, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var o Order
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, err
		}
		for _, it := range o.Items {
			if strings.EqualFold(it.Titre, title) {
				out = append(out, Buyer{
					Email:        o.CustomerEmail,
					DisplayName:  o.DisplayName,
					DeliveryInfo: o.DeliveryInfo,
					OrderedAt:    o.CreatedAt,
				})
				break
			}
		}
	}
	return out, rows.Err()
}
