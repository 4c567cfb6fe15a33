// Package watsonx is the IBM watsonx.ai chat client used as the default inference provider.
package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/internal/domain"
	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

const chatPath = "/ml/v1/text/chat"

// Client implements usecase.InferenceInfra on top of the watsonx.ai chat API.
type Client struct {
	cfg     *cfg.WatsonxCfg
	timeout time.Duration
	httpc   *http.Client
	tokens  *TokenSource
	logger  logger.Logger
}

func NewClient(cfg *cfg.WatsonxCfg, timeout time.Duration, logger logger.Logger) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	// Timeout stays 0: the per-call deadline comes from the context.
	httpc := &http.Client{Transport: tr}

	return &Client{
		cfg:     cfg,
		timeout: timeout,
		httpc:   httpc,
		tokens:  NewTokenSource(cfg.IAMURL, cfg.APIKey, httpc),
		logger:  logger,
	}
}

// WithHTTPClient overrides the HTTP client used for both IAM and chat calls.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.httpc = h
		c.tokens = NewTokenSource(c.cfg.IAMURL, c.cfg.APIKey, h)
	}
	return c
}

func (c *Client) Name() string     { return cfg.ProviderWatsonx }
func (c *Client) GetModel() string { return c.cfg.ModelID }

// CheckCredentials reports e.ErrMissingCredentials when the endpoint, key or project is not configured.
func (c *Client) CheckCredentials() error {
	var missing []string
	if c.cfg.URL == "" {
		missing = append(missing, "IBM_WATSON_URL")
	}
	if c.cfg.APIKey == "" {
		missing = append(missing, "IBM_WATSON_API_KEY")
	}
	if c.cfg.ProjectID == "" {
		missing = append(missing, "IBM_WATSON_PROJECT_ID")
	}
	if len(missing) > 0 {
		return e.Detailed(e.ErrMissingCredentials, "%s not set", strings.Join(missing, ", "))
	}
	return nil
}

// Complete sends one user message made of the prompt and the query images and
// returns choices[0].message.content.
func (c *Client) Complete(ctx context.Context, query *domain.InferenceQuery) (string, error) {
	const op = "watsonx.Complete"

	if err := c.CheckCredentials(); err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(buildChatRequest(c.cfg, query))
	if err != nil {
		return "", e.Wrap(op, err)
	}

	start := time.Now()
	raw, status, err := c.post(ctx, payload)
	if err == nil && status == http.StatusUnauthorized {
		// cached token was revoked or expired early: one fresh exchange
		c.tokens.Invalidate()
		raw, status, err = c.post(ctx, payload)
	}
	if err != nil {
		return "", e.Wrap(op, err)
	}

	if status != http.StatusOK {
		return "", e.Wrap(op, e.Detailed(e.ErrInference, "watsonx chat %d: %s", status, errorMessage(raw)))
	}

	text, err := extractContent(raw)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	c.logger.Debugf("watsonx %s: %d images, %d chars in %v", c.cfg.ModelID, len(query.Images), len(text), time.Since(start))
	return text, nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	endpoint := c.cfg.URL + chatPath + "?" + url.Values{"version": {c.cfg.APIVersion}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, e.Detailed(e.ErrInference, "%v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warnf("watsonx chat: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, e.Detailed(e.ErrInference, "watsonx chat timed out after %v", c.timeout)
		}
		return nil, 0, e.Detailed(e.ErrInference, "watsonx chat: %s", infrastructure.TransportErrorDetail(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warnf("watsonx chat: read response: %v", err)
		return nil, 0, e.Detailed(e.ErrInference, "watsonx chat: read response: %s", infrastructure.TransportErrorDetail(err))
	}
	return raw, resp.StatusCode, nil
}

// buildChatRequest lays out the single user turn: the text prompt first, then every image as a data URL.
func buildChatRequest(c *cfg.WatsonxCfg, query *domain.InferenceQuery) *chatRequest {
	parts := make([]contentPart, 0, 1+len(query.Images))
	parts = append(parts, contentPart{Type: "text", Text: query.Prompt})
	for i := range query.Images {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: query.Images[i].DataURL()},
		})
	}

	return &chatRequest{
		ModelID:   c.ModelID,
		ProjectID: c.ProjectID,
		Messages: []chatMessage{
			{Role: "user", Content: parts},
		},
		MaxTokens: query.MaxTokens,
	}
}

func extractContent(raw []byte) (string, error) {
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", e.Detailed(e.ErrUnexpectedResponse, "bad JSON: %v", err)
	}
	if len(out.Choices) == 0 {
		return "", e.Detailed(e.ErrUnexpectedResponse, "no choices in response")
	}
	msg := out.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", e.Detailed(e.ErrUnexpectedResponse, "choice has no message content")
	}
	return *msg.Content, nil
}

// errorMessage prefers the messages of the watsonx error envelope over the raw body.
func errorMessage(raw []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil && len(apiErr.Errors) > 0 {
		msgs := make([]string, 0, len(apiErr.Errors))
		for _, er := range apiErr.Errors {
			msgs = append(msgs, er.Message)
		}
		return strings.Join(msgs, "; ")
	}
	return truncate(strings.TrimSpace(string(raw)), 512)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
