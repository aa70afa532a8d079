package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/config"
	"github.com/aniayu/storefront-go/internal/http/handlers"
	"github.com/aniayu/storefront-go/internal/middleware"
)

type Deps struct {
	Logger *log.Logger
	Cfg    config.Config

	Shoppers handlers.Shoppers
	Catalog  handlers.Catalog

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: d.Logger, NoColor: true}))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.BrowserSession(d.Cfg.BrowserStateTTL, d.Cfg.CookieSecure))

	health := &handlers.HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Service)
	r.Get("/health/upstreams", health.Upstreams)

	r.Route("/api", func(r chi.Router) {
		cat := handlers.NewCatalogHandler(d.Catalog)
		r.Get("/products", cat.ListProducts)
		r.Get("/products/{id}", cat.GetProduct)
		r.Get("/products/{id}/related", cat.Related)
		r.Get("/categories", cat.ListCategories)
		r.Get("/categories/{slug}", cat.GetCategory)
		r.Get("/homepage", cat.Homepage)
		r.Get("/best-sellers", cat.BestSellers)

		cart := handlers.NewCartHandler(d.Shoppers, d.Catalog)
		r.Post("/session", cart.StartSession)
		r.Get("/cart", cart.GetCart)
		r.Post("/cart/items", cart.AddItem)
		r.Put("/cart/items", cart.UpdateItem)
		r.Delete("/cart/items", cart.RemoveItem)
		r.Delete("/cart", cart.Clear)

		co := handlers.NewCheckoutHandler(d.Shoppers)
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", co.State)
			r.Put("/contact", co.SetContact)
			r.Put("/shipping", co.SetShipping)
			r.Put("/payment-method", co.SelectPayment)
			r.Post("/next", co.Next)
			r.Post("/back", co.Back)
			r.Post("/place", co.PlaceOrder)
			r.Post("/payment/callback", co.PaymentCallback)
		})

		order := handlers.NewOrderHandler(d.Shoppers)
		r.Get("/orders", order.ListOrders)
		r.Get("/orders/{orderId}", order.GetOrder)
		r.Post("/orders/track", order.Track)

		wish := handlers.NewWishlistHandler(d.Shoppers)
		r.Get("/wishlist", wish.List)
		r.Post("/wishlist/{productId}", wish.Add)
		r.Delete("/wishlist/{productId}", wish.Remove)
		r.Post("/wishlist/{productId}/toggle", wish.Toggle)
	})

	return otelhttp.NewHandler(r, "storefront")
}
