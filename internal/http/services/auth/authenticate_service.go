package auth

import (
	"context"
	"strings"

	dto "github.com/dropDatabas3/idpgate/internal/http/dto/auth"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

type authenticateService struct {
	deps Deps
}

func NewAuthenticateService(d Deps) AuthenticateService {
	return &authenticateService{deps: d}
}

func (s *authenticateService) Authenticate(ctx context.Context, in dto.AuthenticateRequest) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.authenticate"),
		logger.Op("Authenticate"),
	)

	// El password no se normaliza
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}
	log = log.With(logger.Username(in.Username))

	res, err := s.deps.Provider.InitiateAuth(ctx, in.Username, in.Password, s.deps.Proofs.For(in.Username))
	if err != nil {
		f := idp.AsFailure(err)
		log.Info("authentication rejected", logger.ProviderCode(f.Code))
		return nil, f
	}

	if res == nil || res.AccessToken == "" {
		challenge := ""
		if res != nil {
			challenge = res.ChallengeName
		}
		log.Info("provider answered without access token", logger.String("challenge", challenge))
		return nil, ErrNoAccessToken
	}

	log.Info("user authenticated")
	return &dto.TokenResponse{AccessToken: res.AccessToken}, nil
}
