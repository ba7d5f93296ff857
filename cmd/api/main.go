package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/auth"
	"github.com/boutique-cartes/backend/internal/catalog"
	"github.com/boutique-cartes/backend/internal/config"
	"github.com/boutique-cartes/backend/internal/httpx"
	kafkax "github.com/boutique-cartes/backend/internal/kafka"
	"github.com/boutique-cartes/backend/internal/mail"
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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalw("db connect", "err", err)
	}
	defer db.Close()
	if err := postgres.ApplySchema(ctx, db); err != nil {
		log.Fatalw("apply schema", "err", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pOrders := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderRecorded, 1024)
	pOrders.Start(ctx)
	pExpired := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicSessionExpired, 1024)
	pExpired.Start(ctx)

	// External collaborators
	gateway := payments.NewStripeGateway(cfg.StripeKey, cfg.CheckoutReturnURL, cfg.StripeWebhookSecret)
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Repos & services
	cardRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	stockSvc := &stock.Service{Gateway: gateway, Repo: &stock.Repo{DB: db}, Log: log}

	router := httpx.NewRouter()
	(&httpx.CatalogHandler{Store: cardRepo, Log: log}).Register(router)
	(&httpx.RatingHandler{Store: cardRepo, Auth: verifier, Log: log}).Register(router)
	(&httpx.OrdersHandler{Repo: orderRepo, Mail: sender, Producer: pOrders, Service: cfg.ServiceName, Log: log}).Register(router)
	(&httpx.PaymentsHandler{
		Gateway:  gateway,
		Webhook:  gateway,
		Stock:    stockSvc,
		Releaser: stockSvc,
		Redis:    rdb,
		Producer: pExpired,
		Service:  cfg.ServiceName,
		Log:      log,
	}).Register(router)
	(&httpx.RequestsHandler{Repo: orderRepo, Mail: sender, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Infow("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Infow("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pOrders.Close()
	pExpired.Close()
	cancel()
	pOrders.WaitClosed()
	pExpired.WaitClosed()
}
