package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"videogenhost/internal/http/handlers"
	"videogenhost/internal/middleware"
)

// NewRouter wires the HTTP surface: JSON job API, range-aware media delivery,
// and the cookie-session page glue.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.Session(app.CookieSecret),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/generate", app.Generate)
		r.Get("/jobs/{job_id}", app.JobStatus)
	})

	// The media and player endpoints are deliberately unauthenticated so the
	// player element can fetch without cookie plumbing.
	r.Get("/video/{filename}", app.ServeVideo)
	r.Get("/player/{filename}", app.Player)

	r.Get("/", app.Home)
	r.Get("/login", app.LoginForm)
	r.Post("/login", app.Login)
	r.Get("/logout", app.Logout)

	return r
}
