// Package auth contiene los controllers HTTP de identidad. Traducen
// *http.Request a handlers.Request y escriben el handlers.Response como JSON.
package auth

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/idpgate/internal/http/errors"
	"github.com/dropDatabas3/idpgate/internal/http/handlers"
	"github.com/dropDatabas3/idpgate/internal/http/helpers"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

// Controllers agrupa los controllers de identidad.
type Controllers struct {
	Authorize    http.Handler
	Authenticate http.Handler
	Register     http.Handler
	Confirm      http.Handler
}

// NewControllers crea el agregador de controllers.
func NewControllers(h *handlers.Handlers) *Controllers {
	return &Controllers{
		Authorize:    Adapt(handlers.OpAuthorize, h.Authorize),
		Authenticate: Adapt(handlers.OpAuthenticate, h.Authenticate),
		Register:     Adapt(handlers.OpRegister, h.Register),
		Confirm:      Adapt(handlers.OpConfirm, h.Confirm),
	}
}

// Adapt expone un handlers.Func como http.Handler.
func Adapt(op string, fn handlers.Func) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.From(ctx).With(logger.Layer("controller"), logger.Op(op))

		body, err := helpers.ReadBody(w, r)
		if err != nil {
			if errors.Is(err, helpers.ErrBodyTooLarge) {
				httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
				return
			}
			log.Debug("read body failed", logger.Err(err))
			body = nil
		}

		resp := fn(ctx, handlers.Request{
			Headers: flattenHeaders(r.Header),
			Body:    body,
		})
		helpers.WriteJSON(w, resp.StatusCode, resp.Body)
	})
}

// flattenHeaders toma el primer valor de cada header (forma canónica).
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
