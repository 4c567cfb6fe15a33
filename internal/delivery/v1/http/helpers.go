package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rautpranav13/IBMaarogyam/internal/domain"
	"github.com/rautpranav13/IBMaarogyam/internal/usecase"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"Invalid input, expected a single image URL as a string."`
}

// ImageResponse is the success envelope of POST /process-image.
type ImageResponse struct {
	Status       string `json:"status" example:"success"`
	Insights     string `json:"insights"`
	DrugSchedule string `json:"drug_schedule"`
}

// ImagesResponse is the success envelope of POST /process-images.
type ImagesResponse struct {
	Status    string      `json:"status" example:"success"`
	Responses []ImageItem `json:"responses"`
}

// ImageItem carries either both completions or an error for one image of a batch.
type ImageItem struct {
	ImageIndex   int     `json:"image_index" example:"1"`
	Insights     *string `json:"insights,omitempty"`
	DrugSchedule *string `json:"drug_schedule,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type processImageReq struct {
	ImageURL any `json:"image_url" swaggertype:"string" example:"https://example.com/prescription.jpg"`
}

type processImagesReq struct {
	ImageURLs any `json:"image_urls" swaggertype:"array,string"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Status:  StatusError,
		Message: message,
	}
}

func NewImageResponse(insight domain.Insight) *ImageResponse {
	return &ImageResponse{
		Status:       StatusSuccess,
		Insights:     insight.Insights,
		DrugSchedule: insight.DrugSchedule,
	}
}

func NewImagesResponse(items []usecase.ImageResult) *ImagesResponse {
	out := make([]ImageItem, 0, len(items))
	for _, it := range items {
		item := ImageItem{ImageIndex: it.Index}
		switch {
		case it.Err != nil:
			_, item.Error = ToHTTPResponse(it.Err)
		case it.Insight != nil:
			insights, schedule := it.Insight.Insights, it.Insight.DrugSchedule
			item.Insights, item.DrugSchedule = &insights, &schedule
		}
		out = append(out, item)
	}

	return &ImagesResponse{
		Status:    StatusSuccess,
		Responses: out,
	}
}

// ToHTTPResponse maps an error chain to a status code and the message shown to the caller.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrMalformedJSON):
		return http.StatusBadRequest, "Invalid JSON body."
	case errors.Is(err, e.ErrInvalidImageURL):
		return http.StatusBadRequest, "Invalid input, expected a single image URL as a string."
	case errors.Is(err, e.ErrInvalidImageURLs):
		return http.StatusBadRequest, "Invalid or missing 'image_urls' parameter."
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, e.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "Method not allowed."
	case errors.Is(err, e.ErrDeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out."
	case errors.Is(err, e.ErrMissingCredentials):
		return http.StatusServiceUnavailable, "Inference credentials are missing."
	case errors.Is(err, e.ErrImageFetch), errors.Is(err, e.ErrNotAnImage), errors.Is(err, e.ErrImageTooLarge):
		return http.StatusBadGateway, "Failed to process image: " + publicMessage(err)
	case errors.Is(err, e.ErrInference), errors.Is(err, e.ErrUnexpectedResponse):
		return http.StatusBadGateway, publicMessage(err)
	default:
		return http.StatusInternalServerError, "Internal server error."
	}
}

// publicMessage returns the sentinel plus its detail, never the wrap chain with source locations.
func publicMessage(err error) string {
	var d *e.DetailError
	if errors.As(err, &d) {
		return d.Error()
	}

	for _, kind := range []error{e.ErrImageFetch, e.ErrNotAnImage, e.ErrImageTooLarge, e.ErrInference, e.ErrUnexpectedResponse} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return e.ErrInternalServerError.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	// completions are HTML fragments and go out unescaped
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// decodeImageURL accepts {"image_url": "<non-empty string>"} only.
func decodeImageURL(r *http.Request) (string, error) {
	var req processImageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", e.Wrap(err.Error(), e.ErrMalformedJSON)
	}

	url, ok := req.ImageURL.(string)
	if !ok || url == "" {
		return "", e.ErrInvalidImageURL
	}
	return url, nil
}

// decodeImageURLs accepts {"image_urls": ["<string>", ...]} with at least one element.
func decodeImageURLs(r *http.Request) ([]string, error) {
	var req processImagesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, e.Wrap(err.Error(), e.ErrMalformedJSON)
	}

	list, ok := req.ImageURLs.([]any)
	if !ok || len(list) == 0 {
		return nil, e.ErrInvalidImageURLs
	}

	urls := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, e.ErrInvalidImageURLs
		}
		urls = append(urls, s)
	}
	return urls, nil
}
