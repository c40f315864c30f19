package routes

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/rbac"
	"github.com/shashiranjanraj/bazaar/pkg/router"
)

// Handlers is everything RegisterAPI mounts.
type Handlers struct {
	Auth    *controllers.AuthController
	Vendor  *controllers.VendorController
	Payment *controllers.PaymentController
	Health  http.HandlerFunc

	// Authenticate requires a valid session cookie.
	Authenticate router.Middleware
	// AuthLimit throttles the credential endpoints; nil disables it.
	AuthLimit router.Middleware
}

func RegisterAPI(r *router.Router, h Handlers) {
	r.Get("/health", "health", h.Health)
	r.Get("/metrics", "metrics", metrics.Handler())

	authn := r.Group("/auth", h.AuthLimit)
	authn.Post("/register", "auth.register", ctx.Wrap(h.Auth.Register))
	authn.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))
	authn.Post("/logout", "auth.logout", ctx.Wrap(h.Auth.Logout))

	vendorOnly := rbac.HasRole("vendor")
	adminOnly := rbac.HasRole("admin")

	vendor := r.Group("/vendor", h.Authenticate)
	vendor.Post("/", "vendor.create", ctx.Wrap(h.Vendor.Create))
	vendor.Get("/", "vendor.show", ctx.Wrap(h.Vendor.Show), vendorOnly)
	vendor.Get("/all", "vendor.index", ctx.Wrap(h.Vendor.Index))
	vendor.Get("/{id}", "vendor.find", ctx.Wrap(h.Vendor.Find), adminOnly)
	vendor.Put("/", "vendor.update", ctx.Wrap(h.Vendor.Update), vendorOnly)
	vendor.Delete("/", "vendor.delete", ctx.Wrap(h.Vendor.Delete), vendorOnly)

	payment := r.Group("/payment", h.Authenticate)
	payment.Post("/", "payment.create", ctx.Wrap(h.Payment.Create))
	payment.Get("/", "payment.index", ctx.Wrap(h.Payment.Index))
	payment.Get("/all", "payment.all", ctx.Wrap(h.Payment.All))
	payment.Get("/{id}", "payment.show", ctx.Wrap(h.Payment.Show))
	payment.Patch("/{id}", "payment.update", ctx.Wrap(h.Payment.Update))
	payment.Delete("/{id}", "payment.delete", ctx.Wrap(h.Payment.Delete))
}

// Table lists the API routes without wiring any services.
func Table() []router.RouteInfo {
	r := router.New()
	RegisterAPI(r, Handlers{
		Auth:    &controllers.AuthController{},
		Vendor:  &controllers.VendorController{},
		Payment: &controllers.PaymentController{},
		Health:  func(http.ResponseWriter, *http.Request) {},
	})
	return r.Routes()
}
