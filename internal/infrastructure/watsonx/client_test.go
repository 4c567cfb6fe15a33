package watsonx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/internal/domain"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

// fakeWatsonx serves the IAM token endpoint and the chat endpoint.
type fakeWatsonx struct {
	iamCalls  atomic.Int32
	chatCalls atomic.Int32

	// chat handles one chat call; n is 1 for the first call.
	chat func(w http.ResponseWriter, r *http.Request, n int32)

	lastBody chatRequest
}

func (f *fakeWatsonx) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.iamCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("iam form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "urn:ibm:params:oauth:grant-type:apikey" || r.PostForm.Get("apikey") != "test-key" {
			t.Errorf("iam form = %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + string(rune('0'+n)),
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/ml/v1/text/chat", func(w http.ResponseWriter, r *http.Request) {
		n := f.chatCalls.Add(1)
		if r.URL.Query().Get("version") != "2024-05-01" {
			t.Errorf("version = %q", r.URL.Query().Get("version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&f.lastBody); err != nil {
			t.Errorf("chat body: %v", err)
		}
		f.chat(w, r, n)
	})
	return mux
}

func newTestClient(srv *httptest.Server) *Client {
	c := &cfg.WatsonxCfg{
		URL:        srv.URL,
		APIKey:     "test-key",
		ProjectID:  "test-project",
		ModelID:    "mistralai/pixtral-12b",
		APIVersion: "2024-05-01",
		IAMURL:     srv.URL + "/identity/token",
	}
	return NewClient(c, 5*time.Second, logger.NewDiscardLogger()).WithHTTPClient(srv.Client())
}

func testQuery() *domain.InferenceQuery {
	img := domain.NewEncodedImage("http://x/rx.png", "image/png", "iVBORw0KGgo=", 1, 1)
	return domain.NewInferenceQuery("Provide insights for the given image in simple language.", 1000, *img)
}

func writeContent(w http.ResponseWriter, content string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"index": 0, "message": map[string]any{"role": "assistant", "content": content}},
		},
	})
}

func TestComplete(t *testing.T) {
	fake := &fakeWatsonx{}
	fake.chat = func(w http.ResponseWriter, r *http.Request, _ int32) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q", got)
		}
		writeContent(w, "Paracetamol 500mg twice daily.")
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := newTestClient(srv)
	for i := 0; i < 2; i++ {
		got, err := client.Complete(context.Background(), testQuery())
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if got != "Paracetamol 500mg twice daily." {
			t.Errorf("Complete() = %q", got)
		}
	}

	if n := fake.iamCalls.Load(); n != 1 {
		t.Errorf("iam calls = %d, want the token to be cached", n)
	}

	body := fake.lastBody
	if body.ModelID != "mistralai/pixtral-12b" || body.ProjectID != "test-project" || body.MaxTokens != 1000 {
		t.Errorf("chat body = %+v", body)
	}
	if len(body.Messages) != 1 || len(body.Messages[0].Content) != 2 {
		t.Fatalf("messages = %+v", body.Messages)
	}
	if part := body.Messages[0].Content[1]; part.ImageURL == nil || part.ImageURL.URL != "data:image/png;base64,iVBORw0KGgo=" {
		t.Errorf("image part = %+v", part)
	}
}

func TestCompleteRefreshesTokenOnUnauthorized(t *testing.T) {
	fake := &fakeWatsonx{}
	fake.chat = func(w http.ResponseWriter, r *http.Request, n int32) {
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"code":"authentication_token_expired","message":"expired"}]}`))
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-2" {
			t.Errorf("retry Authorization = %q, want the refreshed token", got)
		}
		writeContent(w, "ok")
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	got, err := newTestClient(srv).Complete(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q", got)
	}
	if fake.iamCalls.Load() != 2 || fake.chatCalls.Load() != 2 {
		t.Errorf("iam/chat calls = %d/%d, want 2/2", fake.iamCalls.Load(), fake.chatCalls.Load())
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		chat    func(w http.ResponseWriter, r *http.Request, n int32)
		wantErr error
		wantMsg string
	}{
		{
			name: "api error envelope",
			chat: func(w http.ResponseWriter, _ *http.Request, _ int32) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"errors":[{"code":"model_not_supported","message":"Model 'x' is not supported"}]}`))
			},
			wantErr: e.ErrInference,
			wantMsg: "watsonx chat 400: Model 'x' is not supported",
		},
		{
			name: "no choices",
			chat: func(w http.ResponseWriter, _ *http.Request, _ int32) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			wantErr: e.ErrUnexpectedResponse,
		},
		{
			name: "null content",
			chat: func(w http.ResponseWriter, _ *http.Request, _ int32) {
				_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null}}]}`))
			},
			wantErr: e.ErrUnexpectedResponse,
		},
		{
			name: "not json",
			chat: func(w http.ResponseWriter, _ *http.Request, _ int32) {
				_, _ = w.Write([]byte(`<html>gateway</html>`))
			},
			wantErr: e.ErrUnexpectedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeWatsonx{chat: tt.chat}
			srv := httptest.NewServer(fake.handler(t))
			defer srv.Close()

			_, err := newTestClient(srv).Complete(context.Background(), testQuery())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Complete() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Complete() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestCheckCredentials(t *testing.T) {
	client := NewClient(&cfg.WatsonxCfg{URL: "https://eu-gb.ml.cloud.ibm.com"}, time.Second, logger.NewDiscardLogger())

	err := client.CheckCredentials()
	if !errors.Is(err, e.ErrMissingCredentials) {
		t.Fatalf("CheckCredentials() error = %v", err)
	}
	if !strings.Contains(err.Error(), "IBM_WATSON_API_KEY, IBM_WATSON_PROJECT_ID") {
		t.Errorf("CheckCredentials() error = %q, want the missing variables named", err)
	}

	if _, err := client.Complete(context.Background(), testQuery()); !errors.Is(err, e.ErrMissingCredentials) {
		t.Errorf("Complete() error = %v, want ErrMissingCredentials without any network call", err)
	}
}

func TestBuildChatRequestOrder(t *testing.T) {
	a := domain.NewEncodedImage("a", "image/jpeg", "AAAA", 1, 1)
	b := domain.NewEncodedImage("b", "image/webp", "BBBB", 1, 1)
	q := domain.NewInferenceQuery("describe", 200, *a, *b)

	req := buildChatRequest(&cfg.WatsonxCfg{ModelID: "m", ProjectID: "p"}, q)

	parts := req.Messages[0].Content
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "describe" {
		t.Errorf("first part = %+v, want the prompt", parts[0])
	}
	if parts[1].ImageURL.URL != "data:image/jpeg;base64,AAAA" || parts[2].ImageURL.URL != "data:image/webp;base64,BBBB" {
		t.Errorf("image parts out of order: %+v %+v", parts[1].ImageURL, parts[2].ImageURL)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 10, want: "short"},
		{in: "abcdef", n: 3, want: "abc..."},
		// "é" is two bytes; cutting at 2 would split it
		{in: "aé", n: 2, want: "a..."},
		{in: "निषेध", n: 4, want: "न..."},
	}

	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q is not valid UTF-8", tt.in, tt.n, got)
		}
	}
}
