package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/config"
	kafkax "github.com/boutique-cartes/backend/internal/kafka"
	"github.com/boutique-cartes/backend/internal/orders"
	"github.com/boutique-cartes/backend/internal/payments"
	"github.com/boutique-cartes/backend/internal/postgres"
	"github.com/boutique-cartes/backend/internal/redisx"
	"github.com/boutique-cartes/backend/internal/stock"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	log := logger.Sugar()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalw("db connect", "err", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	pReleased := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockReleased, 1024)
	pReleased.Start(ctx)

	gateway := payments.NewStripeGateway(cfg.StripeKey, cfg.CheckoutReturnURL, cfg.StripeWebhookSecret)
	worker := &stock.Worker{
		Svc:         &stock.Service{Gateway: gateway, Repo: &stock.Repo{DB: db}, Log: log},
		Redis:       rdb,
		Producer:    pReleased,
		ServiceName: cfg.ServiceName + "-worker",
		Log:         log,
	}

	group := getenv("RELEASE_GROUP", "stock-release")
	workers := mustAtoi(os.Getenv("RELEASE_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicSessionExpired, workers)

	go func() {
		log.Infow("release consumer started", "group", group, "topic", orders.TopicSessionExpired, "workers", workers)
		if err := cons.Start(ctx, worker.HandleSessionExpired); err != nil {
			log.Errorw("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Infow("shutting down consumer")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pReleased.Close()
	pReleased.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
