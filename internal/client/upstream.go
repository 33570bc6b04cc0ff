// Package client provides the HTTP client used to probe third-party URLs.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"via-proxy-go/internal/apperr"
	"via-proxy-go/internal/config"
	"via-proxy-go/internal/metrics"
	"via-proxy-go/internal/model"
)

// UpstreamClient probes third-party URLs. It is safe for concurrent use.
type UpstreamClient struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewUpstreamClient creates an UpstreamClient with connection pooling and timeouts.
// The metrics parameter is optional; pass nil to disable probe metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	maxRedirects := cfg.Upstream.MaxRedirects
	return &UpstreamClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects: %w", maxRedirects, apperr.ErrTooManyRedirects)
				}
				return nil
			},
		},
		userAgent: cfg.Upstream.UserAgent,
		logger:    logger.With("component", "upstream_client"),
		metrics:   m,
	}
}

// Probe requests target, following redirects, and reports the final response's
// Content-Type and status code. The body is never read. HTTP error statuses are
// returned as data; only failures before a response exists are errors, and
// those are always *apperr.Error.
func (c *UpstreamClient) Probe(ctx context.Context, target string) (*model.ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, c.fail(apperr.Classify(err))
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("probing upstream", "url", target)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, c.fail(apperr.Classify(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if c.metrics != nil {
		c.metrics.ProbeResponses.WithLabelValues(metrics.StatusClass(resp.StatusCode)).Inc()
	}

	return &model.ProbeResult{
		MediaType:  resp.Header.Get("Content-Type"),
		StatusCode: resp.StatusCode,
	}, nil
}

func (c *UpstreamClient) fail(err *apperr.Error) error {
	c.logger.Debug("probe failed", "kind", err.Kind, "err", err.Detail)
	if c.metrics != nil {
		c.metrics.ProbeErrors.WithLabelValues(string(err.Kind)).Inc()
	}
	return err
}
