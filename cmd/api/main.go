package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/offerhubhq/offerhub-backend/api/routes"
	"github.com/offerhubhq/offerhub-backend/internal/discounts"
	"github.com/offerhubhq/offerhub-backend/internal/merchants"
	"github.com/offerhubhq/offerhub-backend/internal/offers"
	"github.com/offerhubhq/offerhub-backend/internal/redemptions"
	"github.com/offerhubhq/offerhub-backend/internal/subscriptions"
	"github.com/offerhubhq/offerhub-backend/pkg/config"
	"github.com/offerhubhq/offerhub-backend/pkg/db"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
	"github.com/offerhubhq/offerhub-backend/pkg/metrics"
	"github.com/offerhubhq/offerhub-backend/pkg/migrate"
	"github.com/offerhubhq/offerhub-backend/pkg/redis"
)

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

	registry := prometheus.NewRegistry()
	redemptionMetrics := metrics.NewRedemptionMetrics(registry)

	merchantRepo := merchants.NewRepository(dbClient.DB())
	offerRepo := offers.NewRepository(dbClient.DB())
	codeRepo := discounts.NewRepository(dbClient.DB())
	redemptionRepo := redemptions.NewRepository(dbClient.DB())
	subscriptionRepo := subscriptions.NewRepository(dbClient.DB())

	merchantService, err := merchants.NewService(merchants.ServiceParams{
		Repo:     merchantRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create merchant service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:               subscriptionRepo,
		Offers:             offerRepo,
		TransactionRunner:  dbClient,
		FreeTierOfferLimit: cfg.Quota.FreeTierOfferLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	offerService, err := offers.NewService(offers.ServiceParams{
		Repo:  offerRepo,
		Quota: subscriptionService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}

	codeCache := discounts.NewCache(redisClient, cfg.Cache.DiscountCodeTTL, logg)

	discountService, err := discounts.NewService(discounts.ServiceParams{
		Repo:    codeRepo,
		Offers:  offerRepo,
		Cache:   codeCache,
		Metrics: redemptionMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}

	redemptionService, err := redemptions.NewService(redemptions.ServiceParams{
		Repo:              redemptionRepo,
		Validator:         discountService,
		Cache:             codeCache,
		TransactionRunner: dbClient,
		Metrics:           redemptionMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create redemption service", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Registry:      registry,
			Merchants:     merchantService,
			Offers:        offerService,
			Discounts:     discountService,
			Redemptions:   redemptionService,
			Subscriptions: subscriptionService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
