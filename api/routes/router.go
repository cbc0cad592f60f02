package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cajaregistradora/pos-backend/api/controllers"
	"github.com/cajaregistradora/pos-backend/api/middleware"
	authsvc "github.com/cajaregistradora/pos-backend/internal/auth"
	productsvc "github.com/cajaregistradora/pos-backend/internal/products"
	"github.com/cajaregistradora/pos-backend/internal/receipt"
	reportsvc "github.com/cajaregistradora/pos-backend/internal/reports"
	salesvc "github.com/cajaregistradora/pos-backend/internal/sales"
	userssvc "github.com/cajaregistradora/pos-backend/internal/users"
	"github.com/cajaregistradora/pos-backend/pkg/auth/session"
	"github.com/cajaregistradora/pos-backend/pkg/config"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
	pkgredis "github.com/cajaregistradora/pos-backend/pkg/redis"
)

// Deps bundles everything the router needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker
	Redis    *pkgredis.Client

	DBPing    func(context.Context) error
	RedisPing func(context.Context) error

	Auth     authsvc.Service
	Users    userssvc.Service
	Products productsvc.Service
	Sales    salesvc.Service
	Reports  reportsvc.Service
	Receipts *receipt.Renderer
}

func New(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	// A typed nil *redis.Client must not reach the middleware as a non-nil
	// interface.
	var idemStore pkgredis.IdempotencyStore
	if d.Redis != nil {
		idemStore = d.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]func(context.Context) error{
			"database": d.DBPing,
			"redis":    d.RedisPing,
		}, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(idemStore, logg)).Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(d.Users, logg))
			r.Patch("/", controllers.ProfileUpdate(d.Users, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(d.Products, logg))
			r.Post("/", controllers.CreateProduct(d.Products, logg))
			r.Get("/categories", controllers.ListCategories(d.Products, logg))
			r.Post("/import", controllers.ImportProducts(d.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(d.Products, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(d.Products, logg))
			r.With(middleware.RequireRole("admin", logg)).Delete("/{productID}", controllers.DeleteProduct(d.Products, logg))
			r.Post("/{productID}/toggle", controllers.ToggleProduct(d.Products, logg))
			r.Post("/{productID}/stock", controllers.AdjustProductStock(d.Products, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(d.Sales, logg))
			r.Post("/", controllers.CreateSale(d.Sales, logg))
			r.Get("/{saleID}", controllers.GetSale(d.Sales, logg))
			r.Get("/{saleID}/receipt", controllers.GetSaleReceipt(d.Sales, d.Receipts, logg))
			r.Post("/{saleID}/status", controllers.UpdateSaleStatus(d.Sales, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.ReportsSummary(d.Reports, logg))
			r.Get("/export", controllers.ReportsExport(d.Reports, logg))
		})
	})

	return r
}
