package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"via-proxy-go/internal/apperr"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error      ErrorBody `json:"error"`
	StatusCode int       `json:"status_code"`
	URL        ErrorURLs `json:"url"`
}

// ErrorBody describes what went wrong.
type ErrorBody struct {
	Class   string `json:"class"`
	Title   string `json:"title"`
	Details string `json:"details"`
}

// ErrorURLs echoes the document that was asked for and the URL to retry.
// Original is null when the request carried no url parameter.
type ErrorURLs struct {
	Original *string `json:"original"`
	Retry    string  `json:"retry"`
}

// ErrorHandler returns an echo.HTTPErrorHandler that renders any error as an
// ErrorResponse. Error responses never carry a Cache-Control header.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "error_handler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		d := apperr.Describe(err)
		req := c.Request()

		level := slog.LevelWarn
		if d.Status >= http.StatusInternalServerError || d.Kind == apperr.KindUnhandledException {
			level = slog.LevelError
		}
		logger.Log(req.Context(), level, "request failed",
			"kind", d.Kind,
			"status", d.Status,
			"details", d.Detail,
			"path", req.URL.Path,
		)

		c.Response().Header().Del("Cache-Control")

		if req.Method == http.MethodHead {
			_ = c.NoContent(d.Status)
			return
		}

		var original *string
		if q := c.QueryParams(); q.Has("url") {
			v := q.Get("url")
			original = &v
		}

		body := ErrorResponse{
			Error: ErrorBody{
				Class:   string(d.Kind),
				Title:   d.Title,
				Details: d.Detail,
			},
			StatusCode: d.Status,
			URL: ErrorURLs{
				Original: original,
				Retry:    baseURL(c) + req.URL.RequestURI(),
			},
		}
		if jerr := c.JSON(d.Status, body); jerr != nil {
			logger.Error("writing error response", "err", jerr)
		}
	}
}
