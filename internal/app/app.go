package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/rautpranav13/IBMaarogyam/internal/cfg"
	v1Grpc "github.com/rautpranav13/IBMaarogyam/internal/delivery/v1/grpc"
	v1Http "github.com/rautpranav13/IBMaarogyam/internal/delivery/v1/http"
	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure/fetcher"
	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure/gemini"
	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure/prompts"
	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure/watsonx"
	"github.com/rautpranav13/IBMaarogyam/internal/usecase"
	"github.com/rautpranav13/IBMaarogyam/pkg/closer"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	router  *chi.Mux
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	closer  *closer.Closer
}

// NewApp wires configuration, inference provider, use case and router.
// Nothing is listening yet; see Run and Handler.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(2 * time.Second)

	ps, err := prompts.Load(cfg.Prompts.File)
	if err != nil {
		log.Errorf(err, "failed to load prompts")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	inference, err := newInference(cfg, log, cl)
	if err != nil {
		log.Errorf(err, "failed to initialize inference provider %s", cfg.Inference.Provider)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	insightUC := usecase.NewInsightUC(
		fetcher.NewFetcher(cfg.Fetch, log),
		inference,
		ps.Single,
		ps.Batch,
		log,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log, cfg.Http)
	router.Init(insightUC)

	return &App{
		cfg:    cfg,
		logger: log,
		router: r,
		closer: cl,
	}, nil
}

// Handler exposes the router for adapters that bring their own listener.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP (and gRPC health when enabled) until SIGINT/SIGTERM or a server failure.
func (a *App) Run() error {
	errCh := make(chan error, 2)

	a.httpSrv = v1Http.NewServer(a.router, a.cfg.Http)
	if err := a.httpSrv.Listen(); err != nil {
		a.logger.Errorf(err, "failed to start HTTP server")
		_ = a.Close()
		return err
	}
	a.closer.Add("http server", a.httpSrv.Stop)
	go func() {
		a.logger.Infof("HTTP server started on %s, request budget %v", a.httpSrv.Addr(), a.cfg.Http.RequestBudget())
		if err := a.httpSrv.Run(); err != nil {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	if a.cfg.Grpc.Enabled {
		a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
		if err := a.grpcSrv.Listen(); err != nil {
			a.logger.Errorf(err, "failed to start gRPC health server")
			_ = a.Close()
			return err
		}
		a.closer.Add("grpc server", a.grpcSrv.Stop)
		go func() {
			a.logger.Infof("gRPC health server starting on %s", a.grpcSrv.Addr())
			if err := a.grpcSrv.Start(); err != nil {
				a.logger.Errorf(err, "gRPC server failed")
				errCh <- err
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("received %s, stopping gracefully...", sig)
	}

	if err := a.Close(); err != nil {
		a.logger.Warnf("%v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// Close releases servers and the inference client, newest first.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return a.closer.Close(ctx)
}

func newInference(cfg *config.Config, log logger.Logger, cl *closer.Closer) (usecase.InferenceInfra, error) {
	switch cfg.Inference.Provider {
	case config.ProviderWatsonx:
		client := watsonx.NewClient(cfg.Watsonx, cfg.Inference.Timeout, log)
		log.Infof("inference provider: watsonx, model %s", client.GetModel())
		return client, nil
	case config.ProviderGemini:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		eng, err := gemini.New(ctx, cfg.Gemini, cfg.Inference.Timeout, log)
		if err != nil {
			return nil, err
		}
		cl.Add("gemini client", func(context.Context) error { return eng.Close() })
		log.Infof("inference provider: gemini, model %s", eng.GetModel())
		return eng, nil
	default:
		return nil, e.Wrap(cfg.Inference.Provider, e.ErrUnknownProvider)
	}
}
