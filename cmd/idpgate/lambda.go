package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/idpgate/internal/config"
	"github.com/dropDatabas3/idpgate/internal/http/handlers"
	"github.com/dropDatabas3/idpgate/internal/http/server"
	"github.com/dropDatabas3/idpgate/internal/lambda"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

type buildHandlersFunc func(context.Context, *config.Config) (*handlers.Handlers, func() error, error)

func newLambdaCmd(load loadFunc) *cobra.Command {
	var op string

	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve AWS Lambda invocations (API Gateway proxy events)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runLambda(cmd.Context(), cfg, op, server.BuildHandlers, lambda.Start)
		},
	}
	cmd.Flags().StringVar(&op, "operation", os.Getenv(lambda.EnvOperation),
		"fixed operation (authorize|authenticate|register|confirm); empty dispatches by path")
	return cmd
}

// runLambda arma los handlers y bloquea en start. cleanup corre al volver.
func runLambda(ctx context.Context, cfg *config.Config, op string, build buildHandlersFunc, start func(*handlers.Handlers, string)) error {
	h, cleanup, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.L().Warn("cleanup failed", logger.Err(err))
		}
	}()

	start(h, op)
	return nil
}
