package fetcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/internal/domain"
	"github.com/rautpranav13/IBMaarogyam/internal/infrastructure"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Fetcher downloads images over HTTP(S) and base64-encodes them.
type Fetcher struct {
	httpc  *http.Client
	cfg    *cfg.FetchCfg
	logger logger.Logger
}

func NewFetcher(cfg *cfg.FetchCfg, logger logger.Logger) *Fetcher {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
	}

	return &Fetcher{
		httpc:  &http.Client{Transport: tr},
		cfg:    cfg,
		logger: logger,
	}
}

// WithHTTPClient overrides the internal HTTP client.
func (f *Fetcher) WithHTTPClient(c *http.Client) *Fetcher {
	if c != nil {
		f.httpc = c
	}
	return f
}

// Fetch downloads rawURL, checks that the payload decodes as an image and returns it encoded.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.EncodedImage, error) {
	const op = "Fetcher.Fetch"

	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		return nil, e.Wrap(op, err)
	}

	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, e.Wrap(op, e.Detailed(e.ErrImageFetch, "%v", err))
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := f.httpc.Do(req)
	if err != nil {
		f.logger.Warnf("GET %s: %v", rawURL, err)
		return nil, e.Wrap(op, e.Detailed(e.ErrImageFetch, "GET %s: %s", rawURL, infrastructure.TransportErrorDetail(err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, e.Wrap(op, e.Detailed(e.ErrImageFetch, "GET %s: status %d", rawURL, resp.StatusCode))
	}

	data, err := f.readBody(resp.Body)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, e.Wrap(op, e.Detailed(e.ErrNotAnImage, "%s (%s)", rawURL, http.DetectContentType(data)))
	}

	mime := infrastructure.MIMEFromImageFormat(format)
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	f.logger.Debugf("fetched %s: %d bytes, %s %dx%d in %v", rawURL, len(data), mime, imgCfg.Width, imgCfg.Height, time.Since(start))

	return domain.NewEncodedImage(rawURL, mime, base64.StdEncoding.EncodeToString(data), imgCfg.Width, imgCfg.Height), nil
}

// readBody reads at most MaxBytes; one extra byte tells an exact-size image from an oversized one.
func (f *Fetcher) readBody(body io.Reader) ([]byte, error) {
	r := body
	if f.cfg.MaxBytes > 0 {
		r = io.LimitReader(body, f.cfg.MaxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, e.Detailed(e.ErrImageFetch, "read body: %s", infrastructure.TransportErrorDetail(err))
	}
	if f.cfg.MaxBytes > 0 && int64(len(data)) > f.cfg.MaxBytes {
		return nil, e.Detailed(e.ErrImageTooLarge, "more than %d bytes", f.cfg.MaxBytes)
	}
	if len(data) == 0 {
		return nil, e.Detailed(e.ErrNotAnImage, "empty body")
	}
	return data, nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return e.Detailed(e.ErrImageFetch, "empty image url")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return e.Detailed(e.ErrImageFetch, "invalid url %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return e.Detailed(e.ErrImageFetch, "unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return e.Detailed(e.ErrImageFetch, "url %q has no host", rawURL)
	}
	return nil
}
