package auth

import (
	"context"
	"strings"

	dto "github.com/dropDatabas3/idpgate/internal/http/dto/auth"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

type confirmService struct {
	deps Deps
}

func NewConfirmService(d Deps) ConfirmService {
	return &confirmService{deps: d}
}

func (s *confirmService) Confirm(ctx context.Context, in dto.ConfirmRequest) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.confirm"),
		logger.Op("Confirm"),
	)

	in.Username = strings.TrimSpace(in.Username)
	in.Code = strings.TrimSpace(in.Code)
	if in.Username == "" || in.Code == "" {
		return ErrMissingConfirmFields
	}
	log = log.With(logger.Username(in.Username))

	if err := s.deps.Provider.ConfirmSignUp(ctx, in.Username, in.Code, s.deps.Proofs.For(in.Username)); err != nil {
		f := idp.AsFailure(err)
		log.Info("confirmation rejected", logger.ProviderCode(f.Code))
		return f
	}

	log.Info("user confirmed")
	return nil
}
