// Package gemini is the alternative inference provider backed by the Google Gemini API.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/jimlawless/whereami"
	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/internal/domain"
	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
	"google.golang.org/api/option"
)

// generator is the part of *genai.GenerativeModel the engine needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Engine struct {
	cfg     *cfg.GeminiCfg
	timeout time.Duration
	client  *genai.Client
	logger  logger.Logger

	// newModel is swapped in tests.
	newModel func(maxTokens int) generator
}

// New creates the Gemini client once for the process lifetime.
// With an empty API key no client is created and every call reports missing credentials.
func New(ctx context.Context, cfg *cfg.GeminiCfg, timeout time.Duration, logger logger.Logger) (*Engine, error) {
	eng := &Engine{
		cfg:     cfg,
		timeout: timeout,
		logger:  logger,
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return eng, nil
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	eng.client = cl
	eng.newModel = func(maxTokens int) generator {
		m := cl.GenerativeModel(strings.TrimSpace(cfg.Model))
		if maxTokens > 0 {
			m.SetMaxOutputTokens(int32(maxTokens))
		}
		return m
	}

	return eng, nil
}

func (g *Engine) Name() string     { return cfg.ProviderGemini }
func (g *Engine) GetModel() string { return g.cfg.Model }

func (g *Engine) CheckCredentials() error {
	if g.newModel == nil {
		return e.Detailed(e.ErrMissingCredentials, "GEMINI_API_KEY not set")
	}
	return nil
}

// Complete sends the prompt followed by the images as inline blobs and returns the first text part.
func (g *Engine) Complete(ctx context.Context, query *domain.InferenceQuery) (string, error) {
	const op = "gemini.Complete"

	if err := g.CheckCredentials(); err != nil {
		return "", err
	}

	parts := make([]genai.Part, 0, 1+len(query.Images))
	parts = append(parts, genai.Text(query.Prompt))
	for _, img := range query.Images {
		data, err := base64.StdEncoding.DecodeString(img.Base64)
		if err != nil {
			return "", e.Wrap(op, err)
		}
		parts = append(parts, genai.Blob{MIMEType: img.MimeType, Data: data})
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.newModel(query.MaxTokens).GenerateContent(ctx, parts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", e.Wrap(op, e.Detailed(e.ErrInference, "gemini timed out after %v", g.timeout))
		}
		g.logger.Warnf("gemini %s: %v", g.cfg.Model, err)
		return "", e.Wrap(op, e.Detailed(e.ErrInference, "gemini: %s", publicDetail(err)))
	}

	text, ok := firstText(resp)
	if !ok {
		return "", e.Wrap(op, e.Detailed(e.ErrUnexpectedResponse, "gemini: no text candidate"))
	}

	g.logger.Debugf("gemini %s: %d images, %d chars in %v", g.cfg.Model, len(query.Images), len(text), time.Since(start))
	return text, nil
}

// Close releases the underlying client.
func (g *Engine) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// publicDetail keeps API messages such as quota errors and hides socket-level ones.
func publicDetail(err error) string {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return infrastructure.TransportErrorDetail(err)
	}
	return err.Error()
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t), true
			}
		}
	}
	return "", false
}
