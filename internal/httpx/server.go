package httpx

import (
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/identity"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"net/http"
	"time"
)

const (
	readTimeout  = 3 * time.Second
	writeTimeout = 5 * time.Second
)

type Deps struct {
	Identity *identity.Service
	Catalog  *catalog.Service
	Cart     *cart.Service
	Orders   *orders.Service
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	auth := RequireSession(d.Identity)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		(&AuthHandler{Identity: d.Identity}).Register(r, auth)
		(&ProductsHandler{Catalog: d.Catalog}).Register(r, auth)
		(&CartHandler{Cart: d.Cart}).Register(r, auth)
		(&OrdersHandler{Orders: d.Orders}).Register(r, auth)
	})
	return r
}
