package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes limita el body de los endpoints de identidad.
const MaxBodyBytes = 1 << 20

// ErrBodyTooLarge se devuelve cuando el body supera MaxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// ReadBody lee el body crudo (hasta 1MB). Devuelve nil si no hay body.
// La decodificación JSON queda a cargo de los handlers.
func ReadBody(w http.ResponseWriter, r *http.Request) (*string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	b, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	s := string(b)
	return &s, nil
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
