package stock

import (
	"context"

	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/payments"
)

// CardStock is the per-card counter mutation surface, implemented by
// Repo and by fakes in tests.
type CardStock interface {
	ReleaseOne(ctx context.Context, cardID string, qty int) (bool, error)
	ReserveOne(ctx context.Context, cardID string, qty int) (bool, error)
}

type SessionReader interface {
	GetSession(ctx context.Context, id string) (*payments.Session, error)
}

type Result struct {
	Released   bool `json:"released"`
	ItemsCount int  `json:"itemsCount"`
}

type Service struct {
	Gateway SessionReader
	Repo    CardStock
	Log     *zap.SugaredLogger
}

// Release compensates a reservation recorded at session-creation time.
// Each item is its own transaction: a failure mid-list leaves earlier
// decrements committed and is surfaced to the caller for retry. Nothing
// marks the session as released afterwards, so a retry after full
// success decrements again (floored at zero).
func (s *Service) Release(ctx context.Context, sessionID string) (Result, error) {
	sess, err := s.Gateway.GetSession(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if !payments.StockReserved(sess.Metadata) {
		return Result{Released: false}, nil
	}

	items, err := payments.ItemsFromMetadata(sess.Metadata)
	if err != nil {
		return Result{}, err
	}
	for _, it := range items {
		found, err := s.Repo.ReleaseOne(ctx, it.ID, it.Quantite)
		if err != nil {
			return Result{}, err
		}
		if !found {
			// The card may have been removed since checkout; skip it.
			s.Log.Infow("release: card no longer exists", "card_id", it.ID, "session_id", sessionID)
		}
	}
	return Result{Released: true, ItemsCount: len(items)}, nil
}

// Reserve is the increment side, called while creating the payment
// session. Missing cards are skipped the same way the release path
// skips them.
func (s *Service) Reserve(ctx context.Context, items []payments.Item) error {
	for _, it := range items {
		found, err := s.Repo.ReserveOne(ctx, it.ID, it.Quantite)
		if err != nil {
			return err
		}
		if !found {
			s.Log.Infow("reserve: card no longer exists", "card_id", it.ID)
		}
	}
	return nil
}
