package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subman/auth"
	"github.com/dmitrymomot/subman/handler"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/user"
)

func planRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()

	// The public catalog backs the marketing pricing page.
	r.Get("/public", listPublicPlansHandler(deps.Plans))

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Get("/", listPlansHandler(deps.Plans))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(user.RoleSuperadmin))
			r.Post("/", createPlanHandler(deps.Plans))
			r.Put("/{planID}", updatePlanHandler(deps.Plans))
			r.Delete("/{planID}", deactivatePlanHandler(deps.Plans))
		})
	})

	return r
}

func listPublicPlansHandler(svc *plan.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.ListPublic(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, plans)
	}
}

func listPlansHandler(svc *plan.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, plans)
	}
}

func createPlanHandler(svc *plan.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in plan.CreateInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		p, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusCreated, p)
	}
}

func updatePlanHandler(svc *plan.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in plan.UpdateInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "planID"), in)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, p)
	}
}

func deactivatePlanHandler(svc *plan.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Deactivate(r.Context(), chi.URLParam(r, "planID")); err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, map[string]string{"message": "plan deactivated successfully"})
	}
}
