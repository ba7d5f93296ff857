package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrAlreadyVoted = errors.New("already voted")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Card, error) {
	rows, err := r.DB.Query(ctx, `SELECT doc FROM cards ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Card, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var c Card
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create assigns id and timestamp, clamps stock_reduc into [0,stock] and
// computes the availability percentage server-side.
func (r *Repo) Create(ctx context.Context, c Card) (Card, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.StockReduc = clamp(c.StockReduc, 0, max(c.Stock, 0))
	c.Disponible = AvailabilityPercent(c.Stock, c.StockReduc)
	if c.Reviews == nil {
		c.Reviews = []Review{}
	}

	doc, err := json.Marshal(c)
	if err != nil {
		return Card{}, err
	}
	_, err = r.DB.Exec(ctx,
		`INSERT INTO cards(id, doc, created_at) VALUES ($1, $2, $3)`,
		c.ID, doc, c.CreatedAt)
	if err != nil {
		return Card{}, err
	}
	return c, nil
}

// Patch merges the caller-supplied fields verbatim into the document.
// id and created_at live outside the document and cannot be rewritten.
func (r *Repo) Patch(ctx context.Context, id string, fields map[string]any) (Card, error) {
	delete(fields, "id")
	delete(fields, "created_at")

	patch, err := json.Marshal(fields)
	if err != nil {
		return Card{}, err
	}
	var raw []byte
	err = r.DB.QueryRow(ctx,
		`UPDATE cards SET doc = doc || $2 WHERE id = $1 RETURNING doc`,
		id, patch).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Card{}, ErrNotFound
	}
	if err != nil {
		return Card{}, err
	}
	var c Card
	if err := json.Unmarshal(raw, &c); err != nil {
		return Card{}, err
	}
	return c, nil
}

// AddReview appends a review under the per-user uniqueness rule. The
// duplicate scan, the append and the stars recompute all happen inside
// one row-locked transaction so two votes from the same user cannot
// interleave.
func (r *Repo) AddReview(ctx context.Context, productID string, rev Review) (float64, []Review, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM cards WHERE id=$1 FOR UPDATE`, productID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, ErrNotFound
	}
	if err != nil {
		return 0, nil, err
	}

	var c Card
	if err := json.Unmarshal(raw, &c); err != nil {
		return 0, nil, err
	}
	for _, existing := range c.Reviews {
		if existing.UserID == rev.UserID {
			return 0, nil, ErrAlreadyVoted
		}
	}

	rev.Date = time.Now().UTC()
	reviews := append(c.Reviews, rev)
	stars := AverageStars(reviews)

	patch, err := json.Marshal(map[string]any{"reviews": reviews, "stars": stars})
	if err != nil {
		return 0, nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE cards SET doc = doc || $2 WHERE id=$1`, productID, patch); err != nil {
		return 0, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, nil, err
	}
	return stars, reviews, nil
}
