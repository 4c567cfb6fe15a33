package http

import (
	"context"
	"net/http"
	"time"

	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/internal/usecase"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

const welcomeText = "Welcome to the Aarogyam insight service!"

type InsightHandler struct {
	insightUsecase usecase.InsightUC
	logger         logger.Logger
	maxBodyBytes   int64
	budget         time.Duration
}

func NewInsightHandler(insightUsecase usecase.InsightUC, logger logger.Logger, cfg *cfg.HTTPConfig) *InsightHandler {
	return &InsightHandler{
		insightUsecase: insightUsecase,
		logger:         logger,
		maxBodyBytes:   cfg.MaxBodyBytes,
		budget:         cfg.RequestBudget(),
	}
}

// home
//
//	@Summary	Liveness
//	@Tags		health
//	@Produce	plain
//	@Success	200	{string}	string	"Welcome text"
//	@Router		/ [get]
func (h *InsightHandler) home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(welcomeText))
}

// processImage
//
//	@Summary		Analyze one prescription image
//	@Description	Downloads the image and returns the "insights" and "drug schedule" completions as HTML body fragments.
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			request	body		processImageReq	true	"Image URL"
//	@Success		200		{object}	ImageResponse
//	@Failure		400		{object}	ErrorResponse	"Missing or non-string image_url"
//	@Failure		502		{object}	ErrorResponse	"Image fetch or inference failure"
//	@Failure		503		{object}	ErrorResponse	"Inference credentials are missing"
//	@Failure		504		{object}	ErrorResponse	"Request budget exhausted"
//	@Router			/process-image [post]
func (h *InsightHandler) processImage(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	url, err := decodeImageURL(r)
	if err != nil {
		log.Warnf("%d process-image: %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.insightUsecase.ProcessImage(ctx, usecase.NewProcessImageReq(url))
	if err != nil {
		code, _ := ToHTTPResponse(err)
		log.Warnf("%d process-image %s: %v", code, url, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewImageResponse(res.Insight))
}

// processImages
//
//	@Summary		Analyze a batch of prescription images
//	@Description	Images are processed in order. A failed image yields an item with "error" and the rest of the batch continues.
//	@Description	Images not finished within the request budget get "error": "Request timed out."
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			request	body		processImagesReq	true	"Image URLs"
//	@Success		200		{object}	ImagesResponse
//	@Failure		400		{object}	ErrorResponse	"Missing, empty or non-list image_urls"
//	@Failure		503		{object}	ErrorResponse	"Inference credentials are missing"
//	@Router			/process-images [post]
func (h *InsightHandler) processImages(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	urls, err := decodeImageURLs(r)
	if err != nil {
		log.Warnf("%d process-images: %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.insightUsecase.ProcessImages(ctx, usecase.NewProcessImagesReq(urls))
	if err != nil {
		code, _ := ToHTTPResponse(err)
		log.Warnf("%d process-images: %v", code, err)
		WriteError(w, err)
		return
	}

	log.Infof("process-images: %d images done", len(res.Items))
	WriteSuccess(w, http.StatusOK, NewImagesResponse(res.Items))
}

// requestContext bounds the use case by the request budget, so the envelope is
// written before the server's write deadline drops the connection.
func (h *InsightHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.budget <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.budget)
}

func (h *InsightHandler) requestLogger(r *http.Request) logger.Logger {
	if id := requestID(r.Context()); id != "" {
		return h.logger.With("request_id", id)
	}
	return h.logger
}
