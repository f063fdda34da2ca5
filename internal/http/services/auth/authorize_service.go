package auth

import (
	"context"
	"strings"

	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

type authorizeService struct {
	provider idp.Provider
}

func NewAuthorizeService(p idp.Provider) AuthorizeService {
	return &authorizeService{provider: p}
}

func (s *authorizeService) Authorize(ctx context.Context, authorization string) (*idp.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.authorize"),
		logger.Op("Authorize"),
	)

	token, ok := bearerToken(authorization)
	if !ok {
		log.Debug("authorization header is not a bearer token")
		return nil, ErrMalformedAuthorization
	}

	user, err := s.provider.GetUser(ctx, token)
	if err != nil {
		f := idp.AsFailure(err)
		log.Info("token rejected", logger.ProviderCode(f.Code))
		return nil, f
	}

	// Éxito sin perfil: el token vale igual.
	if user == nil {
		log.Debug("token accepted without profile")
		return &idp.User{}, nil
	}
	log.Debug("token accepted", logger.Username(user.Username))
	return user, nil
}

// bearerToken extrae el token de "Bearer <token>" (esquema case-insensitive).
func bearerToken(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
