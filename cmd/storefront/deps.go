package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/config"
)

func newLogger() *log.Logger {
	return log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lmicroseconds)
}

// newShopAPI builds the shared client for the remote shop API.
func newShopAPI(cfg config.Config) (*clients.Client, *http.Client) {
	sharedHTTP := &http.Client{
		Timeout:   cfg.UpstreamTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	base := clients.NewClient("shop-api", cfg.APIBaseURL, sharedHTTP, clients.BreakerSettings{
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	})
	return base, sharedHTTP
}

// anonymous is the session of CLI lookups: no guest id is attached.
type anonymous struct{}

func (anonymous) Context(ctx context.Context) context.Context { return ctx }

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
