package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/rautpranav13/IBMaarogyam/docs" // swagger spec
	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/internal/usecase"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
	cfg    *cfg.HTTPConfig
}

func NewRouter(router *chi.Mux, logger logger.Logger, cfg *cfg.HTTPConfig) *Router {
	return &Router{router: router, logger: logger, cfg: cfg}
}

func (r *Router) Init(insightUC usecase.InsightUC) {
	r.router.Use(
		withRequestID,
		middleware.RealIP,
		accessLog(r.logger),
		recoverer(r.logger),
	)

	r.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, e.ErrNotFound)
	})
	r.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, e.ErrMethodNotAllowed)
	})

	if r.cfg.SwaggerEnabled {
		r.router.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := NewInsightHandler(insightUC, r.logger, r.cfg)
	registerInsightRoutes(r.router, h)
	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerInsightRoutes(v1, h)
	})
}

func registerInsightRoutes(router chi.Router, h *InsightHandler) {
	router.Get("/", h.home)
	router.Post("/process-image", h.processImage)
	router.Post("/process-images", h.processImages)
}
