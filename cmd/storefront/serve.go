package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aniayu/storefront-go/internal/cart"
	"github.com/aniayu/storefront-go/internal/catalog"
	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/config"
	"github.com/aniayu/storefront-go/internal/db"
	"github.com/aniayu/storefront-go/internal/events"
	httpapi "github.com/aniayu/storefront-go/internal/http"
	"github.com/aniayu/storefront-go/internal/localstore"
	"github.com/aniayu/storefront-go/internal/payment"
	"github.com/aniayu/storefront-go/internal/shopper"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.Load(), newLogger())
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	base, sharedHTTP := newShopAPI(cfg)

	var pool *pgxpool.Pool
	if cfg.LocalStore == config.LocalStorePostgres {
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		var err error
		pool, err = db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	redisUp := rdb.Ping(ctx).Err() == nil
	if !redisUp && cfg.LocalStore == config.LocalStoreRedis {
		return fmt.Errorf("redis at %s is unreachable", cfg.RedisAddr)
	}

	var store localstore.Store
	switch cfg.LocalStore {
	case config.LocalStoreRedis:
		store = localstore.NewRedis(rdb, cfg.BrowserStateTTL)
	case config.LocalStorePostgres:
		pg := localstore.NewPostgres(pool)
		go purgeBrowserState(ctx, pg, cfg.BrowserStateTTL, logger)
		store = pg
	default:
		store = localstore.NewMemory()
	}
	logger.Printf("browser state in %s", cfg.LocalStore)

	var cache catalog.Cache = catalog.NopCache{}
	if redisUp {
		cache = catalog.NewRedisCache(rdb, cfg.CatalogCacheTTL)
	} else {
		logger.Printf("redis unavailable, catalog cache disabled")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer conn.Close()

		var seq events.Sequencer = events.NewMemorySequencer()
		if pool != nil {
			seq = events.NewPostgresSequencer(pool)
		}
		rp, err := events.NewRabbitPublisher(conn, events.PublisherOptions{Producer: "storefront", Sequencer: seq})
		if err != nil {
			return fmt.Errorf("event publisher: %w", err)
		}
		defer rp.Close()
		publisher = rp
	}

	bridge := payment.NewBridge(
		clients.NewPaymentClient(base),
		payment.NewScriptLoader(cfg.PaymentScriptURL, sharedHTTP),
		payment.Config{MockKey: cfg.PaymentMockKey, MockDelay: cfg.PaymentMockDelay},
		payment.WithEvents(publisher),
		payment.WithLogger(logger),
	)

	registry := shopper.NewRegistry(shopper.Deps{
		Store:    store,
		Guests:   clients.NewGuestClient(base),
		Cart:     clients.NewCartClient(base),
		Checkout: clients.NewCheckoutClient(base),
		Payments: bridge,
		Orders:   clients.NewOrderClient(base),
		Policy: cart.Policy{
			ShippingFee:           cfg.ShippingFee,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			TaxRate:               cfg.TaxRate,
		},
		Events: publisher,
		Logger: logger,
	}, cfg.ShopperIdleTTL)
	go registry.Run(ctx, time.Minute)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       logger,
		Cfg:          cfg,
		Shoppers:     registry,
		Catalog:      catalog.NewService(clients.NewCatalogClient(base), cache, logger),
		HealthProbes: []clients.HealthProbe{{Name: "shop-api", Client: base, Path: "/health"}},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("shutdown complete")
	return nil
}

// purgeBrowserState drops browser rows untouched for longer than ttl, once an hour.
func purgeBrowserState(ctx context.Context, pg *localstore.Postgres, ttl time.Duration, logger *log.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := pg.PurgeBefore(ctx, time.Now().Add(-ttl))
			if err != nil {
				logger.Printf("purge browser state: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("purged %d browser state rows", n)
			}
		}
	}
}
