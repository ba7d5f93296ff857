package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/boutique-cartes/backend/internal/kafka"
	"github.com/boutique-cartes/backend/internal/orders"
	"github.com/boutique-cartes/backend/internal/redisx"
)

// Worker consumes expired-checkout events and runs the release
// compensation for each.
type Worker struct {
	Svc         *Service
	Redis       *redis.Client
	Producer    *kafkax.Producer // publishes stock.released
	ServiceName string
	Log         *zap.SugaredLogger
}

// HandleSessionExpired is installed as the consumer handler.
func (w *Worker) HandleSessionExpired(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventSessionExpired {
		return nil
	}

	// dedup by event_id so a redelivered event does not double-release
	dkey := fmt.Sprintf(redisx.KeyDedup, "stock-worker", env.EventID)
	if exists, _ := redisx.Exists(ctx, w.Redis, dkey); exists {
		return nil
	}
	_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.SessionExpiredPayload](env.Payload)
	if err != nil {
		return err
	}

	res, err := w.Svc.Release(ctx, p.SessionID)
	if err != nil {
		return err
	}
	w.Log.Infow("stock released", "session_id", p.SessionID, "released", res.Released, "items", res.ItemsCount)

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventStockReleased,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      w.ServiceName,
		TraceID:       env.TraceID,
		CorrelationID: p.SessionID,
		Payload: kafkax.MustMarshal(orders.StockReleasedPayload{
			SessionID: p.SessionID, Released: res.Released, ItemsCount: res.ItemsCount,
		}),
	}
	w.Producer.Publish(orders.PartitionKey(p.SessionID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventStockReleased)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
