package watsonx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
)

// refreshSkew renews the token this long before IBM Cloud says it expires.
const refreshSkew = 5 * time.Minute

// TokenSource exchanges an IBM Cloud API key for an IAM bearer token and caches it.
type TokenSource struct {
	iamURL string
	apiKey string
	httpc  *http.Client
	now    func() time.Time

	mu    sync.Mutex
	token string
	exp   time.Time
}

func NewTokenSource(iamURL, apiKey string, httpc *http.Client) *TokenSource {
	return &TokenSource{
		iamURL: iamURL,
		apiKey: apiKey,
		httpc:  httpc,
		now:    time.Now,
	}
}

// Token returns a cached token or fetches a new one.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.exp.Add(-refreshSkew)) {
		return t.token, nil
	}

	token, exp, err := t.exchange(ctx)
	if err != nil {
		return "", err
	}

	t.token, t.exp = token, exp
	return t.token, nil
}

// Invalidate drops the cached token, the next Token call goes to IAM.
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	t.token = ""
	t.mu.Unlock()
}

func (t *TokenSource) exchange(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.iamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, e.Detailed(e.ErrInference, "iam: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return "", time.Time{}, e.Detailed(e.ErrInference, "iam: %s", infrastructure.TransportErrorDetail(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", time.Time{}, e.Detailed(e.ErrInference, "iam %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out iamTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", time.Time{}, e.Detailed(e.ErrUnexpectedResponse, "iam: %v", err)
	}
	if out.AccessToken == "" {
		return "", time.Time{}, e.Detailed(e.ErrUnexpectedResponse, "iam: empty access_token")
	}

	return out.AccessToken, t.expiry(out), nil
}

func (t *TokenSource) expiry(out iamTokenResponse) time.Time {
	switch {
	case out.Expiration > 0:
		return time.Unix(out.Expiration, 0)
	case out.ExpiresIn > 0:
		return t.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	default:
		// IAM tokens live one hour
		return t.now().Add(time.Hour)
	}
}
