package usecase

import "context"

type InsightUC interface {
	// ProcessImage fails fast: any fetch or inference error fails the whole request.
	ProcessImage(ctx context.Context, req *ProcessImageReq) (*ProcessImageRes, error)
	// ProcessImages records fetch and inference errors per item; only missing
	// credentials fail the whole batch.
	ProcessImages(ctx context.Context, req *ProcessImagesReq) (*ProcessImagesRes, error)
}
