package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/offerhubhq/offerhub-backend/api/controllers"
	"github.com/offerhubhq/offerhub-backend/api/middleware"
	"github.com/offerhubhq/offerhub-backend/internal/discounts"
	"github.com/offerhubhq/offerhub-backend/internal/merchants"
	"github.com/offerhubhq/offerhub-backend/internal/offers"
	"github.com/offerhubhq/offerhub-backend/internal/redemptions"
	"github.com/offerhubhq/offerhub-backend/internal/subscriptions"
	"github.com/offerhubhq/offerhub-backend/pkg/config"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	Registry      *prometheus.Registry
	Merchants     merchants.Service
	Offers        offers.Service
	Discounts     discounts.Service
	Redemptions   redemptions.Service
	Subscriptions subscriptions.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/offers", controllers.PublicOffers(deps.Offers, logg))
		r.Get("/plans", controllers.PlanList(deps.Subscriptions, logg))
		r.Post("/checkout/validate", controllers.CheckoutValidate(deps.Discounts, logg))
		r.Post("/checkout/redeem", controllers.CheckoutRedeem(deps.Redemptions, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(deps.Merchants, logg))
		r.Post("/login", controllers.Login(deps.Merchants, logg))
	})

	r.Route("/api/v1/merchant", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.MemberRoleMerchant, logg))

		r.Get("/me", controllers.Me(deps.Merchants, logg))

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", controllers.MerchantOfferCreate(deps.Offers, logg))
			r.Get("/", controllers.MerchantOfferList(deps.Offers, logg))
			r.Get("/{offerId}", controllers.MerchantOfferDetail(deps.Offers, logg))
			r.Patch("/{offerId}", controllers.MerchantOfferUpdate(deps.Offers, logg))
			r.Patch("/{offerId}/active", controllers.MerchantOfferSetActive(deps.Offers, logg))
		})

		r.Route("/discount-codes", func(r chi.Router) {
			r.Post("/", controllers.DiscountCodeCreate(deps.Discounts, logg))
			r.Get("/", controllers.DiscountCodeList(deps.Discounts, logg))
			r.Get("/{codeId}", controllers.DiscountCodeDetail(deps.Discounts, logg))
			r.Patch("/{codeId}", controllers.DiscountCodeUpdate(deps.Discounts, logg))
			r.Patch("/{codeId}/active", controllers.DiscountCodeSetActive(deps.Discounts, logg))
		})

		r.Route("/subscription", func(r chi.Router) {
			r.Get("/", controllers.SubscriptionCurrent(deps.Subscriptions, logg))
			r.Post("/", controllers.SubscriptionPurchase(deps.Subscriptions, logg))
			r.Post("/cancel", controllers.SubscriptionCancel(deps.Subscriptions, logg))
		})

		r.Get("/quota", controllers.MerchantQuota(deps.Subscriptions, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.MemberRoleAdmin, logg))

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", controllers.AdminOfferList(deps.Offers, logg))
			r.Post("/{offerId}/approve", controllers.AdminOfferApprove(deps.Offers, logg))
			r.Post("/{offerId}/reject", controllers.AdminOfferReject(deps.Offers, logg))
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", controllers.PlanList(deps.Subscriptions, logg))
			r.Post("/", controllers.PlanCreate(deps.Subscriptions, logg))
			r.Patch("/{planId}", controllers.PlanUpdate(deps.Subscriptions, logg))
		})
	})

	return r
}
