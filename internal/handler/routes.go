package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// routedMethods are accepted on the viewer and routing endpoints. HEAD is
// answered like GET so link checkers see the same redirect.
var routedMethods = []string{http.MethodGet, http.MethodHead}

// RegisterRoutes wires all route handlers onto the Echo instance.
// Everything not matched by a fixed route is treated as a URL to route.
func RegisterRoutes(e *echo.Echo, route *RouteHandler, health *HealthHandler) {
	e.GET("/_status", health.Liveness)
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	e.Match(routedMethods, "/pdf/*", route.ViewPDF)
	e.Match(routedMethods, "/*", route.RouteByContent)
}
