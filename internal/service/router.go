// Package service implements routing decisions for third-party URLs.
package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"via-proxy-go/internal/apperr"
	"via-proxy-go/internal/config"
	"via-proxy-go/internal/metrics"
	"via-proxy-go/internal/model"
)

// pdfMediaTypes are matched by containment so parameters such as
// "; charset=binary" do not defeat detection.
var pdfMediaTypes = []string{"application/pdf", "application/x-pdf"}

// truthy lists the values accepted as "on" for boolean query parameters.
var truthy = map[string]bool{"t": true, "true": true, "y": true, "yes": true, "on": true, "1": true}

// Prober reports the media type and status of an upstream URL.
type Prober interface {
	Probe(ctx context.Context, target string) (*model.ProbeResult, error)
}

// RouterService decides where a third-party URL should be served from.
// It holds no per-request state and is safe for concurrent use.
type RouterService struct {
	prober  Prober
	routing config.RoutingConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRouterService creates a RouterService. The metrics parameter is optional.
func NewRouterService(p Prober, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *RouterService {
	return &RouterService{
		prober:  p,
		routing: cfg.Routing,
		logger:  logger.With("component", "router_service"),
		metrics: m,
	}
}

// Route probes the request's target and returns a redirect decision. PDFs go
// to the viewer page; everything else goes to the legacy proxy with a cache
// policy derived from the upstream status. Probe failures are returned as
// *apperr.Error without retrying.
func (s *RouterService) Route(ctx context.Context, req *model.RouteRequest) (*model.RouteDecision, error) {
	filtered := FilterURL(req.Target, req.Query)

	probe, err := s.prober.Probe(ctx, filtered)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	var decision *model.RouteDecision
	if IsPDF(probe.MediaType) {
		decision = &model.RouteDecision{
			RedirectTarget: viewerURL(req),
			CacheControl:   ViewerCachePolicy,
			Destination:    model.ViewerPage,
		}
	} else {
		decision = &model.RouteDecision{
			RedirectTarget: s.routing.LegacyViaURL + "/" + strings.TrimLeft(req.PathQuery, "/"),
			CacheControl:   CachePolicy(probe.StatusCode),
			Destination:    model.GenericProxy,
		}
	}

	s.logger.Debug("routed",
		"url", filtered,
		"media_type", probe.MediaType,
		"status", probe.StatusCode,
		"destination", decision.Destination.String(),
	)
	if s.metrics != nil {
		s.metrics.RouteDecisions.WithLabelValues(decision.Destination.String()).Inc()
	}

	return decision, nil
}

// ViewerPage builds the template variables for the embedded PDF viewer.
func (s *RouterService) ViewerPage(target string, query url.Values) *model.ViewerPageData {
	return &model.ViewerPageData{
		PDFURL:         s.routing.NginxServer + "/proxy/static/" + FilterURL(target, query),
		ClientEmbedURL: s.routing.ClientEmbedURL,
		OpenSidebar:    truthy[strings.ToLower(strings.TrimSpace(query.Get(ParamOpenSidebar)))],
		RequestConfig:  query.Get(ParamConfigFromFrame),
	}
}

// IsPDF reports whether a Content-Type value denotes a PDF.
func IsPDF(mediaType string) bool {
	mt := strings.ToLower(mediaType)
	for _, pdf := range pdfMediaTypes {
		if strings.Contains(mt, pdf) {
			return true
		}
	}
	return false
}

// viewerURL points at the viewer route for the original, unfiltered target
// and query so the viewer still sees its control parameters.
func viewerURL(req *model.RouteRequest) string {
	u := url.URL{Path: "/pdf/" + req.Target, RawQuery: req.Query.Encode()}
	return strings.TrimRight(req.BaseURL, "/") + u.String()
}
