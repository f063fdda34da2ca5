package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/idpgate/internal/http/server"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

func newServeCmd(load loadFunc) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			h, cleanup, err := server.BuildHandler(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := cleanup(); err != nil {
					logger.L().Warn("cleanup failed", logger.Err(err))
				}
			}()

			srv := server.NewHTTPServer(cfg, h)
			log := logger.L().With(logger.Component("serve"))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down", logger.String("timeout", cfg.Server.ShutdownTimeout.String()))
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr / SERVER_ADDR)")
	return cmd
}
