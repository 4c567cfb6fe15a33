package e

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	err := Wrap("InsightUseCase.ProcessImage", ErrImageFetch)

	if !errors.Is(err, ErrImageFetch) {
		t.Errorf("errors.Is(%v, ErrImageFetch) = false", err)
	}
	if got, want := err.Error(), "InsightUseCase.ProcessImage: failed to fetch image"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDetailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with detail",
			err:  Detailed(ErrImageFetch, "GET %s: status %d", "http://x/a.png", 404),
			want: "failed to fetch image: GET http://x/a.png: status 404",
		},
		{
			name: "empty detail",
			err:  Detailed(ErrNotAnImage, ""),
			want: "fetched content is not a supported image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetailErrorSurvivesWrapping(t *testing.T) {
	err := Wrap("outer", Wrap("inner", Detailed(ErrInference, "watsonx chat %d: %s", 500, "boom")))

	if !errors.Is(err, ErrInference) {
		t.Fatalf("errors.Is(ErrInference) = false for %v", err)
	}

	var de *DetailError
	if !errors.As(err, &de) {
		t.Fatalf("errors.As(*DetailError) = false for %v", err)
	}
	if de.Detail != "watsonx chat 500: boom" {
		t.Errorf("Detail = %q", de.Detail)
	}
}
