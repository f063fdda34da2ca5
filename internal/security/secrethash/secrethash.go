// Package secrethash deriva la prueba por usuario de que este cliente conoce el
// secret del app client, sin enviar el secret.
package secrethash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Compute devuelve base64(HMAC-SHA256(key=clientSecret, msg=username+clientID)).
// Nunca falla: un secret vacío produce una prueba débil pero definida.
func Compute(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compara en tiempo constante una prueba recibida contra la esperada.
func Verify(proof, username, clientID, clientSecret string) bool {
	want := Compute(username, clientID, clientSecret)
	return hmac.Equal([]byte(proof), []byte(want))
}

// Deriver fija la identidad del cliente para todo el proceso; los callers sólo
// pasan el username. El zero value es usable (id y secret vacíos).
type Deriver struct {
	clientID     string
	clientSecret string
}

// NewDeriver crea un Deriver para el app client dado.
func NewDeriver(clientID, clientSecret string) Deriver {
	return Deriver{clientID: clientID, clientSecret: clientSecret}
}

// For calcula la prueba para username.
func (d Deriver) For(username string) string {
	return Compute(username, d.clientID, d.clientSecret)
}

// ClientID devuelve el client id al que están atadas las pruebas.
func (d Deriver) ClientID() string {
	return d.clientID
}
