package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/http/handlers"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/middleware"
)

// Options configures the middleware stack around the API routes.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	DefaultLocale  string
	Country        middleware.CountryLookup
	RateLimit      int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.Country),
		middleware.Logger(opts.Logger),
		app.Recoverer,
	)

	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
			r.Post("/generate", app.Generate)
			r.Post("/convert", app.Convert)
			r.Post("/chat", app.ChatMessage)
		})
	})

	return r
}
