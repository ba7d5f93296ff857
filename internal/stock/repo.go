package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo mutates the stock_reduc counter of card documents. Every call is
// one row-locked read-modify-write transaction on a single card, so a
// counter update can never lose a concurrent write. There is no
// transaction spanning several cards.
type Repo struct{ DB *pgxpool.Pool }

// ReleaseOne decrements stock_reduc by qty, floored at zero. A missing
// card reports found=false and is not an error.
func (r *Repo) ReleaseOne(ctx context.Context, cardID string, qty int) (found bool, err error) {
	return r.update(ctx, cardID, func(stock, reduc int) int {
		return releaseClamp(reduc, qty)
	})
}

// ReserveOne increments stock_reduc by qty, capped at the card's total
// stock.
func (r *Repo) ReserveOne(ctx context.Context, cardID string, qty int) (found bool, err error) {
	return r.update(ctx, cardID, func(stock, reduc int) int {
		return reserveClamp(reduc, qty, stock)
	})
}

func (r *Repo) update(ctx context.Context, cardID string, next func(stock, reduc int) int) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var stock, reduc int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE((doc->>'stock')::int, 0),
		       COALESCE((doc->>'stock_reduc')::int, 0)
		FROM cards WHERE id=$1 FOR UPDATE`, cardID).Scan(&stock, &reduc)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE cards SET doc = jsonb_set(doc, '{stock_reduc}', to_jsonb($2::int))
		WHERE id=$1`, cardID, next(stock, reduc)); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func releaseClamp(reduc, qty int) int {
	if next := reduc - qty; next > 0 {
		return next
	}
	return 0
}

func reserveClamp(reduc, qty, stock int) int {
	next := reduc + qty
	if next > stock {
		return stock
	}
	return next
}
