package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coreybb/todo-api/auth"
	"github.com/coreybb/todo-api/datastore"
	rh "github.com/coreybb/todo-api/route-handlers"
	"github.com/coreybb/todo-api/webutil"
)

const (
	authBasePath  = "/auth"
	todosBasePath = "/todos"
)

func SetupRoutes(
	allowedOrigins []string,
	authHandler *rh.AuthHandler,
	todoHandler *rh.TodoHandler,
	tokens *auth.TokenIssuer,
	users *datastore.UserRepository,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(CORS(allowedOrigins))
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8))

	requireAuth := RequireAuth(tokens, users)

	configureAuthRoutes(r, authHandler, requireAuth)
	configureTodoRoutes(r, todoHandler, requireAuth)

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

// --- Auth Routes ---
func configureAuthRoutes(r chi.Router, handler *rh.AuthHandler, requireAuth func(http.Handler) http.Handler) {
	r.Route(authBasePath, func(r chi.Router) {
		r.Post("/register", webutil.MakeHandler(handler.HandleRegister))
		r.Post("/login", webutil.MakeHandler(handler.HandleLogin))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/refresh", webutil.MakeHandler(handler.HandleRefresh))
			r.Get("/me", webutil.MakeHandler(handler.HandleGetMe))
			r.Put("/me", webutil.MakeHandler(handler.HandleUpdateMe))
			r.Put("/me/password", webutil.MakeHandler(handler.HandleChangePassword))
		})
	})
}

// --- Todo Routes ---
func configureTodoRoutes(r chi.Router, handler *rh.TodoHandler, requireAuth func(http.Handler) http.Handler) {
	r.Route(todosBasePath, func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", webutil.MakeHandler(handler.HandleListTodos))
		r.Post("/", webutil.MakeHandler(handler.HandleCreateTodo))
		r.Get("/stats/count", webutil.MakeHandler(handler.HandleGetTodoStats))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(handler.HandleGetTodo))
			r.Put("/", webutil.MakeHandler(handler.HandleReplaceTodo))
			r.Patch("/", webutil.MakeHandler(handler.HandlePatchTodo))
			r.Delete("/", webutil.MakeHandler(handler.HandleDeleteTodo))
		})
	})
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
