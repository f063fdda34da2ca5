// Command lambda es el bootstrap para el runtime provided.al2 de AWS Lambda.
// Toda la configuración viene del entorno de la función.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dropDatabas3/idpgate/internal/config"
	"github.com/dropDatabas3/idpgate/internal/http/server"
	"github.com/dropDatabas3/idpgate/internal/lambda"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "idpgate-lambda"})

	h, cleanup, err := server.BuildHandlers(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.L().Warn("cleanup failed", logger.Err(err))
		}
	}()
	lambda.Start(h, os.Getenv(lambda.EnvOperation))
}
