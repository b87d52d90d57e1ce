package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixglobal/registry/internal/app"
	"github.com/pixglobal/registry/internal/clock"
	"github.com/pixglobal/registry/internal/config"
	"github.com/pixglobal/registry/internal/metrics"
	"github.com/pixglobal/registry/internal/nft"
	"github.com/pixglobal/registry/internal/paypal"
	"github.com/pixglobal/registry/internal/storage/postgres"
	transporthttp "github.com/pixglobal/registry/internal/transport/http"
	"github.com/pixglobal/registry/migrations"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	metrics.Register()

	clk := clock.NewSystem()
	domainRepo := postgres.NewDomainRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	provider := paypal.New(paypal.Config{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		WebhookID:    cfg.PayPalWebhookID,
		Environment:  cfg.PayPalEnv,
	}, logger)
	verifier := nft.New(cfg.NFTGatewayURL)

	availabilitySvc := app.NewAvailabilityService(domainRepo)
	checkoutSvc := app.NewCheckoutService(orderRepo, domainRepo, provider, clk, cfg.CurrencyUnit(), cfg.PublicBaseURL, logger)
	paymentSvc := app.NewPaymentService(orderRepo, provider, clk, logger)
	infoSvc := app.NewDomainInfoService(domainRepo, verifier)

	authed := func(h http.Handler) http.Handler {
		return transporthttp.RequireAuth(sessionRepo, clk, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/check-domain", transporthttp.HandleCheckDomain(availabilitySvc))
	mux.Handle("/check-domain-availability", transporthttp.HandleCheckAvailability(availabilitySvc))
	mux.Handle("/create-order", authed(transporthttp.HandleCreateOrder(checkoutSvc)))
	mux.Handle("/create-cart-order", authed(transporthttp.HandleCreateCartOrder(checkoutSvc)))
	mux.Handle("/capture-cart-order", transporthttp.HandleCaptureOrder(paymentSvc))
	mux.Handle("/payment-webhook", transporthttp.HandleWebhook(paymentSvc))
	mux.Handle("/paypal-webhook", transporthttp.HandleWebhook(paymentSvc))
	mux.Handle("/get-domain-info", transporthttp.HandleGetDomainInfo(infoSvc))
	mux.Handle("/verify-nft", transporthttp.HandleVerifyNFT(infoSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsOrigins := parseCSV(cfg.CORSOrigins)
	handler := transporthttp.RequestLogger(
		transporthttp.Instrument(transporthttp.CORS(corsOrigins, mux)),
		logger,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s (paypal env %s, currency %s)", cfg.Port, cfg.PayPalEnv, cfg.Currency)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
