package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/gotodo-api/apperror"
	"github.com/user/gotodo-api/auth"
	"github.com/user/gotodo-api/todos"
	"github.com/user/gotodo-api/users"
)

// newRouter assembles the full middleware stack and the /v1 route table.
func newRouter(guard *auth.Guard, userHandlers *users.UserHandlers, todoHandlers *todos.TodoHandlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.TokenHeader},
		ExposedHeaders:   []string{auth.TokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic safety net on top of middleware.Recoverer: anything that slips
	// through still produces the standard error envelope.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign_up", userHandlers.HandleRegister())
			r.Post("/sign_in", userHandlers.HandleLogin())
			r.With(auth.RequireToken(guard)).Delete("/resign", userHandlers.HandleDelete())
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandlers.HandleList())
			r.Get("/{id}", userHandlers.HandleShow())
			r.With(auth.RequireToken(guard)).Put("/{id}", userHandlers.HandleUpdate())
			r.With(auth.RequireToken(guard)).Delete("/{id}", userHandlers.HandleDelete())
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", todoHandlers.HandleList())
			r.Get("/{id}", todoHandlers.HandleShow())
			r.With(auth.RequireToken(guard)).Post("/", todoHandlers.HandleCreate())
			r.With(auth.RequireToken(guard)).Put("/{id}", todoHandlers.HandleUpdate())
			r.With(auth.RequireToken(guard)).Delete("/{id}", todoHandlers.HandleDelete())
		})
	})

	return r
}
