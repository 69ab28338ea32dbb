package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/coreybb/todo-api/auth"
	"github.com/coreybb/todo-api/datastore"
	"github.com/coreybb/todo-api/webutil"
)

const bearerPrefix = "Bearer "

// CORS builds the cross-origin middleware from the configured origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// RequireAuth verifies the bearer token on protected routes and resolves it
// to a live user record before any handler logic runs. The resolved user is
// placed on the request context; everything downstream trusts only that,
// never client-supplied identity.
func RequireAuth(tokens *auth.TokenIssuer, users *datastore.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(webutil.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				webutil.RespondWithError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			tokenStr := strings.TrimSpace(header[len(bearerPrefix):])
			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				message := "Could not validate credentials"
				if errors.Is(err, auth.ErrTokenExpired) {
					message = "Token has expired"
				}
				webutil.RespondWithError(w, http.StatusUnauthorized, message)
				return
			}

			// The token may outlive the account; a deleted user's token is
			// rejected here.
			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				webutil.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(webutil.WithUser(r.Context(), user)))
		})
	}
}

// SetHeader is a middleware to set a response header.
func SetHeader(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, value)
			next.ServeHTTP(w, r)
		})
	}
}
