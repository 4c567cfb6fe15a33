package usecase

import (
	"context"

	"github.com/rautpranav13/IBMaarogyam/internal/domain"
)

// InferenceInfra is the hosted multimodal model: one prompt plus images in, one completion out.
type InferenceInfra interface {
	Complete(ctx context.Context, query *domain.InferenceQuery) (string, error)
}

// CredentialChecker is implemented by inference clients that can tell up front
// whether they are configured well enough to serve requests.
type CredentialChecker interface {
	CheckCredentials() error
}

// ImageFetcher downloads a remote image and returns it base64-encoded.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.EncodedImage, error)
}
