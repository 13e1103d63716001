package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subman/auth"
	"github.com/dmitrymomot/subman/handler"
	"github.com/dmitrymomot/subman/user"
)

func userRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(deps.Auth.Authenticate)

	// Any authenticated user manages their own profile.
	r.Get("/profile", profileHandler(deps.Auth))
	r.Put("/profile", updateProfileHandler(deps.Auth))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(user.RoleAdmin))
		r.Get("/organization", listMembersHandler(deps.Auth))
		r.Post("/organization", addMemberHandler(deps.Auth))
		r.Put("/organization/{userID}", updateMemberHandler(deps.Auth))
		r.Delete("/organization/{userID}", deactivateMemberHandler(deps.Auth))
	})

	return r
}

func listMembersHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := svc.ListMembers(r.Context(), currentUser(r))
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, members)
	}
}

func addMemberHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.RegisterUserInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		member, _, err := svc.RegisterUser(r.Context(), currentUser(r), in)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusCreated, member)
	}
}

func updateMemberHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.UpdateMemberInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		member, err := svc.UpdateMember(r.Context(), currentUser(r), chi.URLParam(r, "userID"), in)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, member)
	}
}

func deactivateMemberHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeactivateMember(r.Context(), currentUser(r), chi.URLParam(r, "userID")); err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, map[string]string{"message": "user deactivated successfully"})
	}
}

func profileHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Profile(r.Context(), currentUser(r).ID)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, u)
	}
}

func updateProfileHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.UpdateMemberInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), currentUser(r).ID, in)
		if err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, u)
	}
}
