package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authservice "github.com/yogesh1636/Bibliotheca/internal/auth/service"
)

type RouterDeps struct {
	Auth     *authservice.AuthService
	Books    *BookHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Account  *AuthHandler

	RequestTimeout time.Duration
}

// NewRouter assembles the storefront API. Catalog and cart are public,
// checkout, order history and account routes require a session.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", deps.Books.ListBooks)
			r.Get("/featured", deps.Books.FeaturedBooks)
			r.Get("/{id}", deps.Books.GetBook)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", deps.Cart.GetCart)
			r.Post("/lines", deps.Cart.AddLine)
			r.Delete("/lines/{index}", deps.Cart.RemoveLine)
			r.Delete("/", deps.Cart.ClearCart)
		})

		r.Post("/auth/signup", deps.Account.SignUp)
		r.Post("/auth/signin", deps.Account.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(deps.Auth))

			r.Post("/auth/signout", deps.Account.SignOut)
			r.Get("/auth/me", deps.Account.Me)
			r.Put("/auth/profile", deps.Account.UpdateProfile)

			r.Post("/checkout", deps.Checkout.Checkout)
			r.Get("/orders", deps.Orders.ListOrders)
		})
	})

	return r
}
