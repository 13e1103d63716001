package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subman/billing"
	"github.com/dmitrymomot/subman/handler"
	"github.com/dmitrymomot/subman/subscription"
)

// maxWebhookBytes bounds webhook payload reads.
const maxWebhookBytes = 1 << 16

func stripeRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Webhook deliveries authenticate by signature, not bearer token.
	r.Post("/webhook", webhookHandler(deps.Gateway, deps.Subscriptions))

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Post("/subscribe", subscribeHandler(deps.Subscriptions, deps.Config))
		r.Get("/subscription", getSubscriptionHandler(deps.Subscriptions))
	})

	return r
}

func subscribeHandler(svc *subscription.Reconciler, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			PlanID string `json:"planId"`
		}
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		session, err := svc.Subscribe(r.Context(),
			currentUser(r).OrganizationID,
			in.PlanID,
			cfg.FrontendURL+"/payment/success",
			cfg.FrontendURL+"/cart?canceled=true",
		)
		if err != nil {
			respondError(w, err)
			return
		}

		handler.JSON(w, http.StatusOK, map[string]string{"id": session.ID, "url": session.URL})
	}
}

func webhookHandler(gateway billing.Gateway, svc *subscription.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			handler.Error(w, handler.ErrBadRequest.WithMessage("failed to read payload"))
			return
		}

		event, err := gateway.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			respondError(w, err)
			return
		}

		if err := svc.HandleEvent(r.Context(), event); err != nil {
			respondError(w, err)
			return
		}

		handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}

func getSubscriptionHandler(svc *subscription.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.GetDetails(r.Context(), currentUser(r).OrganizationID)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, details)
	}
}
