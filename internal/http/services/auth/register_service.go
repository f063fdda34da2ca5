package auth

import (
	"context"
	"strings"

	dto "github.com/dropDatabas3/idpgate/internal/http/dto/auth"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

type registerService struct {
	deps Deps
}

func NewRegisterService(d Deps) RegisterService {
	return &registerService{deps: d}
}

func (s *registerService) Register(ctx context.Context, in dto.RegisterRequest) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return ErrMissingRegisterFields
	}
	log = log.With(logger.Username(in.Username))

	res, err := s.deps.Provider.SignUp(ctx, in.Email, in.Username, in.Password, s.deps.Proofs.For(in.Username))
	if err != nil {
		f := idp.AsFailure(err)
		log.Info("registration rejected", logger.ProviderCode(f.Code))
		return f
	}

	if res == nil {
		log.Info("user registered")
		return nil
	}
	log.Info("user registered",
		logger.String("user_sub", res.UserSub),
		logger.Bool("confirmed", res.UserConfirmed),
		logger.String("code_destination", res.CodeDestination),
	)
	return nil
}
