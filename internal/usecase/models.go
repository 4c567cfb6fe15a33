package usecase

import "github.com/rautpranav13/IBMaarogyam/internal/domain"

// ProcessImageReq is a single image request.
type ProcessImageReq struct {
	ImageURL string
}

// ProcessImageRes holds the completions for the single image.
type ProcessImageRes struct {
	Insight domain.Insight
}

// ProcessImagesReq is a batch request. URLs are processed in order.
type ProcessImagesReq struct {
	ImageURLs []string
}

// ProcessImagesRes has one item per requested URL, in request order.
type ProcessImagesRes struct {
	Items []ImageResult
}

// ImageResult is either an Insight or the error that stopped this image.
type ImageResult struct {
	Index   int // 1-based position in the request
	Insight *domain.Insight
	Err     error
}

func NewProcessImageReq(imageURL string) *ProcessImageReq {
	return &ProcessImageReq{ImageURL: imageURL}
}

func NewProcessImagesReq(imageURLs []string) *ProcessImagesReq {
	return &ProcessImagesReq{ImageURLs: imageURLs}
}

func NewProcessImageRes(insight domain.Insight) *ProcessImageRes {
	return &ProcessImageRes{Insight: insight}
}

func NewProcessImagesRes(items []ImageResult) *ProcessImagesRes {
	return &ProcessImagesRes{Items: items}
}
