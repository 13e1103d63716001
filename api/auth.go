package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subman/auth"
	"github.com/dmitrymomot/subman/handler"
	"github.com/dmitrymomot/subman/subscription"
	"github.com/dmitrymomot/subman/user"
)

func authRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Post("/register", registerHandler(deps.Subscriptions))
	r.Post("/login", loginHandler(deps.Auth))

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(auth.RequireRole(user.RoleAdmin))
		r.Post("/register-user", registerUserHandler(deps.Auth))
		r.Delete("/users/{userID}", deleteUserHandler(deps.Auth))
	})

	return r
}

func registerHandler(svc *subscription.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in subscription.RegisterInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		res, err := svc.Register(r.Context(), in)
		if err != nil {
			respondError(w, err)
			return
		}

		handler.JSON(w, http.StatusCreated, res)
	}
}

func loginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		session, err := svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			respondError(w, err)
			return
		}

		handler.JSON(w, http.StatusOK, session)
	}
}

func registerUserHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.RegisterUserInput
		if err := handler.Decode(r, &in); err != nil {
			handler.Error(w, err)
			return
		}

		member, usage, err := svc.RegisterUser(r.Context(), currentUser(r), in)
		if err != nil {
			respondError(w, err)
			return
		}

		payload := map[string]any{"user": member}
		if usage != nil {
			payload["organization"] = usage
		}
		handler.JSON(w, http.StatusCreated, payload)
	}
}

func deleteUserHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteMember(r.Context(), currentUser(r), chi.URLParam(r, "userID")); err != nil {
			respondError(w, err)
			return
		}
		handler.JSON(w, http.StatusOK, map[string]string{"message": "user deleted successfully"})
	}
}
