package watsonx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rautpranav13/IBMaarogyam/pkg/e"
)

func TestTokenSourceRefreshesBeforeExpiry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok","expiration":1700003600}`))
	}))
	defer srv.Close()

	now := time.Unix(1700000000, 0)
	ts := NewTokenSource(srv.URL, "key", srv.Client())
	ts.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := ts.Token(context.Background()); err != nil {
			t.Fatalf("Token() error = %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 while the token is fresh", calls.Load())
	}

	// within refreshSkew of the expiration
	now = now.Add(56 * time.Minute)
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want a refresh near expiry", calls.Load())
	}

	ts.Invalidate()
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want a refresh after Invalidate", calls.Load())
	}
}

func TestTokenSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bad api key", status: http.StatusBadRequest, body: `{"errorMessage":"Provided API key could not be found."}`, wantErr: e.ErrInference},
		{name: "empty token", status: http.StatusOK, body: `{"access_token":""}`, wantErr: e.ErrUnexpectedResponse},
		{name: "not json", status: http.StatusOK, body: `oops`, wantErr: e.ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewTokenSource(srv.URL, "key", srv.Client()).Token(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Token() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
