// Package api wires the HTTP surface: route registration, role gates,
// and the mapping from domain errors to HTTP responses.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/subman/auth"
	"github.com/dmitrymomot/subman/billing"
	"github.com/dmitrymomot/subman/entitlement"
	"github.com/dmitrymomot/subman/handler"
	"github.com/dmitrymomot/subman/organization"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/subscription"
	"github.com/dmitrymomot/subman/user"
)

// Config carries the HTTP-surface settings.
type Config struct {
	// FrontendURL is the base URL checkout redirects back to.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// Deps are the services the router exposes.
type Deps struct {
	Auth          *auth.Service
	Plans         *plan.Service
	Organizations *organization.Service
	Subscriptions *subscription.Reconciler
	Gateway       billing.Gateway
	Healthcheck   func(context.Context) error
	Config        Config
}

// New builds the API router. The webhook route sits outside the
// authenticated tree; everything else requires a bearer token except
// registration, login, and the public plan listing.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authRoutes(deps))
		r.Mount("/users", userRoutes(deps))
		r.Mount("/plans", planRoutes(deps))
		r.Mount("/organizations", organizationRoutes(deps))
		r.Mount("/stripe", stripeRoutes(deps))
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.Healthcheck != nil {
			if err := deps.Healthcheck(req.Context()); err != nil {
				handler.Error(w, handler.NewHTTPError(http.StatusServiceUnavailable, "unhealthy"))
				return
			}
		}
		handler.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// respondError translates domain errors into HTTP responses. Anything
// unmapped becomes a 500 without leaking internals.
func respondError(w http.ResponseWriter, err error) {
	var seatErr *entitlement.SeatLimitError
	switch {
	case errors.As(err, &seatErr):
		handler.Error(w, handler.ErrBadRequest.WithMessage(seatErr.Error()))
	case errors.Is(err, auth.ErrInvalidCredentials):
		handler.Error(w, handler.ErrUnauthorized.WithMessage("invalid credentials"))
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, organization.ErrNotFound),
		errors.Is(err, plan.ErrNotFound),
		errors.Is(err, subscription.ErrReferenceNotFound):
		handler.Error(w, handler.ErrNotFound.WithMessage(err.Error()))
	case errors.Is(err, subscription.ErrEmailTaken),
		errors.Is(err, user.ErrEmailTaken):
		handler.Error(w, handler.ErrBadRequest.WithMessage("user already exists"))
	case errors.Is(err, entitlement.ErrSubscriptionNotActive):
		handler.Error(w, handler.ErrBadRequest.WithMessage("organization subscription is not active"))
	case errors.Is(err, entitlement.ErrCannotModifySelf):
		handler.Error(w, handler.ErrBadRequest.WithMessage(err.Error()))
	case errors.Is(err, plan.ErrMissingPriceRef):
		handler.Error(w, handler.ErrBadRequest.WithMessage("invalid plan configuration"))
	case errors.Is(err, plan.ErrBasicNotSeeded):
		handler.Error(w, handler.ErrInternalServerError.WithMessage("basic plan is not configured"))
	case errors.Is(err, billing.ErrSignatureVerification):
		handler.Error(w, handler.ErrBadRequest.WithMessage("webhook signature verification failed"))
	case errors.Is(err, billing.ErrUpstream):
		handler.Error(w, handler.ErrBadGateway.WithMessage("billing provider unavailable"))
	default:
		handler.Error(w, err)
	}
}

// currentUser pulls the authenticated user out of the context; the
// Authenticate middleware guarantees presence on protected routes.
func currentUser(r *http.Request) *user.User {
	u, _ := auth.CurrentUser(r.Context())
	return u
}
