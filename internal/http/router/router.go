// Package router arma las rutas HTTP sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/idpgate/internal/http/controllers/auth"
	"github.com/dropDatabas3/idpgate/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/idpgate/internal/http/errors"
	mw "github.com/dropDatabas3/idpgate/internal/http/middlewares"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Auth   *authctrl.Controllers
	Health http.Handler

	// Metrics se monta en MetricsPath si no es nil.
	Metrics     http.Handler
	MetricsPath string

	CORSAllowedOrigins []string
}

// New devuelve el handler raíz con middlewares globales aplicados.
// Orden: recover -> request id -> security headers -> CORS -> metrics -> logging.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	for _, m := range []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSAllowedOrigins),
		mw.WithMetrics(),
		mw.WithLogging(),
	} {
		r.Use(m)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health == nil {
		d.Health = health.NewController("")
	}
	r.Method(http.MethodGet, "/healthz", d.Health)

	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics)
	}

	if d.Auth != nil {
		RegisterAuthRoutes(r, d.Auth)
	}
	return r
}

// RegisterAuthRoutes registra los endpoints de identidad. Todas sus respuestas
// son no-store.
func RegisterAuthRoutes(r chi.Router, c *authctrl.Controllers) {
	noStore := func(h http.Handler) http.Handler { return mw.Chain(h, mw.WithNoStore()) }

	r.Method(http.MethodGet, "/authorize", noStore(c.Authorize))
	r.Method(http.MethodPost, "/authorize", noStore(c.Authorize))
	r.Method(http.MethodPost, "/authenticate", noStore(c.Authenticate))
	r.Method(http.MethodPost, "/register", noStore(c.Register))
	r.Method(http.MethodPost, "/confirm", noStore(c.Confirm))
}
