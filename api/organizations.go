package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subman/auth"
	"github.com/dmitrymomot/subman/handler"
	"github.com/dmitrymomot/subman/organization"
	"github.com/dmitrymomot/subman/user"
)

func organizationRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(deps.Auth.Authenticate)
	r.Use(auth.RequireRole(user.RoleSuperadmin))

	r.Get("/", listOrganizationsHandler(deps.Organizations))
	r.Post("/", createOrganizationHandler(deps.Organizations))
	r.Get("/{orgID}", getOrganizationHandler(deps.Organizations))
	r.Put("/{orgID}", updateOrganizationHandler(deps.Organizations))
	r.Delete("/{orgID}", deactivateOrganizationHandler(deps.Organizations))
	r.Get("/{orgID}/users", listOrganizationUsersHandler(deps.Organizations))
	r.Post("/{orgID}/toggle-status", toggleOrganizationStatusHandler(deps.Organizations))
	r.Delete("/{orgID}/permanent", permanentDeleteOrganizationHandler(deps.Organizations))

	return r
}

func listOrganizationsHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgs, err := svc.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, orgs)
	}
}

func createOrganizationHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in organization.CreateInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		org, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusCreated, org)
	}
}

func getOrganizationHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := svc.Get(r.Context(), chi.URLParam(r, "orgID"))
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, org)
	}
}

func updateOrganizationHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in organization.UpdateInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		org, err := svc.Update(r.Context(), chi.URLParam(r, "orgID"), in)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, org)
	}
}

func deactivateOrganizationHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Deactivate(r.Context(), chi.URLParam(r, "orgID")); err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, map[string]string{"message": "organization deactivated successfully"})
	}
}

func listOrganizationUsersHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context(), chi.URLParam(r, "orgID"))
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, users)
	}
}

func toggleOrganizationStatusHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := svc.ToggleStatus(r.Context(), chi.URLParam(r, "orgID"))
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, map[string]any{"isActive": active})
	}
}

func permanentDeleteOrganizationHandler(svc *organization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.PermanentDelete(r.Context(), chi.URLParam(r, "orgID")); err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, map[string]string{"message": "organization permanently deleted"})
	}
}
