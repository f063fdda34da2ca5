// Package server arma el grafo de dependencias a partir de la configuración:
// provider -> services -> handlers -> controllers -> router.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/idpgate/internal/config"
	authctrl "github.com/dropDatabas3/idpgate/internal/http/controllers/auth"
	"github.com/dropDatabas3/idpgate/internal/http/controllers/health"
	"github.com/dropDatabas3/idpgate/internal/http/handlers"
	"github.com/dropDatabas3/idpgate/internal/http/router"
	svc "github.com/dropDatabas3/idpgate/internal/http/services/auth"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/idp/cognito"
	"github.com/dropDatabas3/idpgate/internal/idp/local"
	"github.com/dropDatabas3/idpgate/internal/metrics"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
	"github.com/dropDatabas3/idpgate/internal/security/secrethash"
)

// BuildProvider crea el identity provider según idp.driver. cleanup libera
// conexiones (redis) y nunca es nil.
func BuildProvider(ctx context.Context, cfg *config.Config) (idp.Provider, func() error, error) {
	noop := func() error { return nil }

	switch cfg.IDP.Driver {
	case config.DriverCognito:
		p, err := cognito.New(ctx, cfg.IDP)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil

	case config.DriverLocal:
		store, cleanup, err := buildLocalStore(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}

		var sender local.CodeSender = local.LogSender{}
		if cfg.Local.CodeSender == "smtp" {
			sender = local.NewSMTPSender(*cfg)
		}

		p, err := local.New(local.Options{
			ClientID:     cfg.IDP.ClientID,
			ClientSecret: cfg.IDP.ClientSecret.Value(),
			SigningKey:   []byte(cfg.Local.SigningKey.Value()),
			TokenTTL:     cfg.Local.TokenTTL,
			CodeTTL:      cfg.Local.CodeTTL,
			Store:        store,
			Sender:       sender,
		})
		if err != nil {
			_ = cleanup()
			return nil, noop, err
		}
		return p, cleanup, nil
	}
	return nil, noop, fmt.Errorf("unknown idp driver %q", cfg.IDP.Driver)
}

func buildLocalStore(ctx context.Context, cfg *config.Config) (local.Store, func() error, error) {
	if cfg.Local.Store != "redis" {
		return local.NewMemoryStore(), func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password.Value(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	return local.NewRedisStore(rdb, cfg.Redis.Prefix), rdb.Close, nil
}

// BuildHandlers arma los handlers neutrales al transporte. Lo usan tanto el
// servidor HTTP como la función Lambda.
func BuildHandlers(ctx context.Context, cfg *config.Config) (*handlers.Handlers, func() error, error) {
	log := logger.Named("wiring")

	provider, cleanup, err := BuildProvider(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build identity provider: %w", err)
	}

	if cfg.Metrics.Enabled {
		if err := metrics.Register(nil); err != nil {
			_ = cleanup()
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		provider = metrics.InstrumentProvider(provider)
	}

	proofs := secrethash.NewDeriver(cfg.IDP.ClientID, cfg.IDP.ClientSecret.Value())
	if !cfg.IDP.ClientSecret.IsSet() {
		log.Warn("idp client secret is not set; secret hashes are computed with an empty key",
			logger.ClientID(proofs.ClientID()))
	}

	log.Info("identity provider ready",
		logger.String("driver", cfg.IDP.Driver),
		logger.String("region", cfg.IDP.Region),
		logger.ClientID(proofs.ClientID()),
		logger.Redacted("client_secret", cfg.IDP.ClientSecret.Value()),
	)

	services := svc.NewServices(svc.Deps{
		Provider: provider,
		Proofs:   proofs,
	})
	return handlers.New(services), cleanup, nil
}

// BuildHandler arma el http.Handler completo.
func BuildHandler(ctx context.Context, cfg *config.Config) (http.Handler, func() error, error) {
	h, cleanup, err := BuildHandlers(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	deps := router.Deps{
		Auth:               authctrl.NewControllers(h),
		Health:             health.NewController(cfg.IDP.Driver),
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}
	return router.New(deps), cleanup, nil
}

// NewHTTPServer crea el *http.Server con los timeouts configurados.
func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
}
