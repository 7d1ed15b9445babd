package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/omnex-storefront/internal/address"
	"github.com/fjod/omnex-storefront/internal/cart"
	"github.com/fjod/omnex-storefront/internal/catalog"
	"github.com/fjod/omnex-storefront/internal/checkout"
	"github.com/fjod/omnex-storefront/internal/config"
	"github.com/fjod/omnex-storefront/internal/events"
	"github.com/fjod/omnex-storefront/internal/health"
	h "github.com/fjod/omnex-storefront/internal/http"
	"github.com/fjod/omnex-storefront/internal/logger"
	"github.com/fjod/omnex-storefront/internal/order"
	"github.com/fjod/omnex-storefront/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, storage.Config{
		Backend:       storage.Backend(cfg.StorageBackend),
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisTTL:      cfg.RedisTTL,
		MongoURI:      cfg.MongoURI,
		MongoDBName:   cfg.MongoDBName,
		SQLitePath:    cfg.SQLitePath,
		PostgresDSN:   cfg.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer kv.Close()
	l.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	feed := cart.NewFeed()
	cartStore, err := cart.New(ctx, kv,
		cart.WithShippingPolicy(cart.ShippingPolicy{
			DomesticCountry:   cfg.DomesticCountry,
			DomesticRate:      cfg.DomesticShippingRate,
			InternationalRate: cfg.InternationalShippingRate,
		}),
		cart.WithDisplay(feed),
		cart.WithLogger(l.Named("cart")),
	)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	catalogClient := &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: otelhttp.NewTransport(catalog.NewTransport(cfg.CatalogRoot)),
	}
	products := catalog.NewReader(catalogClient, cfg.CatalogURL, l.Named("catalog"))
	addresses := address.NewStore(kv, l.Named("address"))

	assembler := order.NewAssembler(cartStore, order.WithPaymentMethod(cfg.PaymentMethod))
	var submitterOpts []order.SubmitterOption
	if cfg.BreakerEnabled {
		submitterOpts = append(submitterOpts, order.WithBreaker(cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout))
	}
	submitClient := &http.Client{
		Timeout:   cfg.SubmitTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	submitter := order.NewSubmitter(submitClient, cfg.OrderEndpoint, l.Named("order"), submitterOpts...)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		l.Info("publishing order events", zap.String("topic", cfg.KafkaTopic), zap.Strings("brokers", cfg.KafkaBrokers))
	}
	defer publisher.Close()

	checkoutService := checkout.NewService(cartStore, addresses, assembler, submitter, publisher,
		l.Named("checkout"), checkout.WithKeepCart(cfg.KeepCartAfterOrder))

	router := h.NewRouter(h.Handlers{
		Products:      h.NewProductHandler(products, cfg.RequestTimeout),
		Cart:          h.NewCartHandler(cartStore, products, addresses, cfg.RequestTimeout),
		Addresses:     h.NewAddressHandler(addresses, cfg.RequestTimeout),
		Checkout:      h.NewCheckoutHandler(checkoutService, cfg.SubmitTimeout),
		Notifications: h.NewNotificationHandler(feed),
	}, cfg.RequestTimeout+cfg.SubmitTimeout, l.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + cfg.SubmitTimeout,
		IdleTimeout:  60 * time.Second,
	}

	monitor := health.NewMonitor(kv, cfg.HealthInterval, l.Named("health"))
	grpcServer := health.NewGRPCServer(monitor)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on grpc port %s: %w", cfg.GRPCPort, err)
	}

	errCh := make(chan error, 2)
	go monitor.Run(ctx)
	go func() {
		l.Info("health server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		l.Info("storefront listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		l.Info("shutting down")
	case err := <-errCh:
		l.Error("server failed, shutting down", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	l.Info("storefront stopped")
	return nil
}
