package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"via-proxy-go/internal/apperr"
	"via-proxy-go/internal/model"
	"via-proxy-go/internal/service"
)

// viewerTemplate is the template name rendered for the PDF viewer page.
const viewerTemplate = "pdf_viewer.html"

// RouteHandler redirects third-party URLs to the viewer or the legacy proxy.
type RouteHandler struct {
	service *service.RouterService
	logger  *slog.Logger
}

// NewRouteHandler creates a RouteHandler.
func NewRouteHandler(svc *service.RouterService, logger *slog.Logger) *RouteHandler {
	return &RouteHandler{
		service: svc,
		logger:  logger.With("component", "route_handler"),
	}
}

// RouteByContent probes the URL in the request path and answers with a 302 to
// wherever it should be served from.
func (h *RouteHandler) RouteByContent(c echo.Context) error {
	req := c.Request()

	target := strings.TrimPrefix(req.URL.Path, "/")
	if target == "" {
		return apperr.New(apperr.KindBadURL, "no URL given to route")
	}

	decision, err := h.service.Route(req.Context(), &model.RouteRequest{
		Target:    target,
		Query:     c.QueryParams(),
		PathQuery: req.URL.RequestURI(),
		BaseURL:   baseURL(c),
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set("Cache-Control", decision.CacheControl)
	return c.Redirect(http.StatusFound, decision.RedirectTarget)
}

// ViewPDF renders the embedded viewer page for the PDF URL in the request path.
func (h *RouteHandler) ViewPDF(c echo.Context) error {
	target := strings.TrimPrefix(c.Request().URL.Path, "/pdf/")
	if target == "" {
		return apperr.New(apperr.KindBadURL, "no PDF URL given")
	}

	page := h.service.ViewerPage(target, c.QueryParams())

	// Short leash so newly deployed viewer assets are picked up.
	c.Response().Header().Set("Cache-Control", "max-age=0")
	return c.Render(http.StatusOK, viewerTemplate, page)
}

// baseURL returns the scheme and host the request was addressed to.
func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
