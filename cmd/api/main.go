package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cajaregistradora/pos-backend/api/routes"
	authsvc "github.com/cajaregistradora/pos-backend/internal/auth"
	"github.com/cajaregistradora/pos-backend/internal/notifier"
	productsvc "github.com/cajaregistradora/pos-backend/internal/products"
	"github.com/cajaregistradora/pos-backend/internal/receipt"
	reportsvc "github.com/cajaregistradora/pos-backend/internal/reports"
	salesvc "github.com/cajaregistradora/pos-backend/internal/sales"
	userssvc "github.com/cajaregistradora/pos-backend/internal/users"
	"github.com/cajaregistradora/pos-backend/pkg/auth/session"
	"github.com/cajaregistradora/pos-backend/pkg/config"
	"github.com/cajaregistradora/pos-backend/pkg/db"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
	"github.com/cajaregistradora/pos-backend/pkg/metrics"
	"github.com/cajaregistradora/pos-backend/pkg/migrate"
	"github.com/cajaregistradora/pos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	saleMetrics := metrics.NewSaleMetrics(prometheus.DefaultRegisterer)

	usersRepo := userssvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := userssvc.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	productsService, err := productsvc.NewService(productsvc.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	var saleNotifier salesvc.SaleNotifier
	if cfg.Sheets.Enabled() {
		saleNotifier = notifier.New(cfg.Sheets, logg, saleMetrics)
		logg.Info(context.Background(), "sale mirroring to bookkeeping webhook enabled")
	}

	salesService, err := salesvc.NewService(salesvc.NewRepository(dbClient.DB()), dbClient, saleNotifier, saleMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	reportsService, err := reportsvc.NewService(reportsvc.NewRepository(dbClient.DB()), time.Now)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	receiptRenderer, err := receipt.NewRenderer(cfg.Receipt)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipt renderer", err)
		os.Exit(1)
	}

	router := routes.New(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		Sessions:  sessionManager,
		Redis:     redisClient,
		DBPing:    dbClient.Ping,
		RedisPing: redisClient.Ping,
		Auth:      authService,
		Users:     usersService,
		Products:  productsService,
		Sales:     salesService,
		Reports:   reportsService,
		Receipts:  receiptRenderer,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
