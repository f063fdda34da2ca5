// Package health expone el liveness del servicio.
package health

import (
	"net/http"

	"github.com/dropDatabas3/idpgate/internal/http/helpers"
)

type response struct {
	Status string `json:"status"`
	Driver string `json:"driver"`
}

// Controller responde GET /healthz. No llama al identity provider.
type Controller struct {
	driver string
}

func NewController(driver string) *Controller {
	return &Controller{driver: driver}
}

func (c *Controller) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, response{Status: "ok", Driver: c.driver})
}
