package e

import (
	"errors"
	"fmt"
)

var (
	// 400 Bad Request
	ErrStatusBadRequest = errors.New("bad request")
	ErrMalformedJSON    = errors.New("malformed JSON body")
	ErrInvalidImageURL  = errors.New("invalid input, expected a single image URL as a string")
	ErrInvalidImageURLs = errors.New("invalid or missing 'image_urls' parameter")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNotFound         = errors.New("not found")

	// Image fetching
	ErrImageFetch    = errors.New("failed to fetch image")
	ErrNotAnImage    = errors.New("fetched content is not a supported image")
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// Inference
	ErrInference          = errors.New("inference request failed")
	ErrUnexpectedResponse = errors.New("unexpected inference response")
	ErrMissingCredentials = errors.New("inference credentials are missing")
	ErrUnknownProvider    = errors.New("unknown inference provider")

	// Request budget
	ErrDeadlineExceeded = errors.New("request deadline exceeded")

	// Config
	ErrIncorrectEnvVariable = errors.New("incorrect environment variable")

	// 500 Internal Server Error
	ErrInternalServerError = errors.New("internal server error")
)

// Wrap prefixes err with msg, keeping it unwrappable.
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// DetailError attaches a caller-safe detail to one of the sentinel errors above.
// Wrapping it with Wrap keeps both errors.Is on the sentinel and Detail reachable.
type DetailError struct {
	Kind   error
	Detail string
}

func (d *DetailError) Error() string {
	if d.Detail == "" {
		return d.Kind.Error()
	}
	return d.Kind.Error() + ": " + d.Detail
}

func (d *DetailError) Unwrap() error {
	return d.Kind
}

// Detailed builds a DetailError of the given kind.
func Detailed(kind error, format string, args ...any) error {
	return &DetailError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
