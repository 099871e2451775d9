package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the task API.
//
// Routes:
//
//	POST   /auth/signup        → authHandler.SignUp
//	POST   /auth/signin        → authHandler.SignIn
//	GET    /tasks              → taskHandler.List         (BearerAuth)
//	POST   /tasks              → taskHandler.Create       (BearerAuth)
//	GET    /tasks/{id}         → taskHandler.Get          (BearerAuth)
//	PUT    /tasks/{id}/status  → taskHandler.UpdateStatus (BearerAuth)
//	DELETE /tasks/{id}         → taskHandler.Delete       (BearerAuth)
//
// Middleware chain (applied in order):
//  1. Recoverer: turns panics into 500s
//  2. AllowContentType("application/json"): rejects non-JSON bodies
//  3. WithRequestLogging(logger): logs completed requests
func NewRouter(
	authHandler *AuthHandler,
	taskHandler *TaskHandler,
	tokens middleware.TokenParser,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.BearerAuth(tokens))
		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}/status", taskHandler.UpdateStatus)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
