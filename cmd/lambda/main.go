// Command lambda serves the same router behind an API Gateway proxy integration.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"github.com/rautpranav13/IBMaarogyam/internal/app"
	config "github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	mux, ok := application.Handler().(*chi.Mux)
	if !ok {
		log.Errorf(nil, "router is not a chi mux")
		os.Exit(1)
	}
	adapter := chiadapter.New(mux)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
