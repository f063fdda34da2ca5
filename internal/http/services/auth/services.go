// Package auth contiene los services de identidad: validan la entrada, derivan
// el secret hash y hacen exactamente una llamada al identity provider.
package auth

import (
	"context"
	"errors"

	dto "github.com/dropDatabas3/idpgate/internal/http/dto/auth"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/security/secrethash"
)

// Errores de validación. Los rechazos del provider llegan como *idp.Failure.
var (
	ErrMalformedAuthorization = errors.New("authorization is not a bearer token")
	ErrMissingCredentials     = errors.New("missing username or password")
	ErrMissingRegisterFields  = errors.New("missing email, username or password")
	ErrMissingConfirmFields   = errors.New("missing username or code")
	ErrNoAccessToken          = errors.New("provider returned no access token")
)

type AuthorizeService interface {
	// Authorize recibe el valor crudo del header Authorization.
	Authorize(ctx context.Context, authorization string) (*idp.User, error)
}

type AuthenticateService interface {
	Authenticate(ctx context.Context, in dto.AuthenticateRequest) (*dto.TokenResponse, error)
}

type RegisterService interface {
	Register(ctx context.Context, in dto.RegisterRequest) error
}

type ConfirmService interface {
	Confirm(ctx context.Context, in dto.ConfirmRequest) error
}

// Deps contiene las dependencias compartidas por los services.
type Deps struct {
	Provider idp.Provider
	Proofs   secrethash.Deriver
}

// Services agrupa los services de identidad.
type Services struct {
	Authorize    AuthorizeService
	Authenticate AuthenticateService
	Register     RegisterService
	Confirm      ConfirmService
}

// NewServices crea el agregador de services.
func NewServices(d Deps) Services {
	return Services{
		Authorize:    NewAuthorizeService(d.Provider),
		Authenticate: NewAuthenticateService(d),
		Register:     NewRegisterService(d),
		Confirm:      NewConfirmService(d),
	}
}
