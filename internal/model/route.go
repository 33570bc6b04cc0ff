// Package model defines the request-scoped types passed between the router layers.
package model

import "net/url"

// Destination is the handling path chosen for a routed URL.
type Destination int

const (
	// GenericProxy forwards the request through the legacy proxy.
	GenericProxy Destination = iota
	// ViewerPage renders the document in the embedded PDF viewer.
	ViewerPage
)

func (d Destination) String() string {
	switch d {
	case ViewerPage:
		return "viewer_page"
	case GenericProxy:
		return "generic_proxy"
	default:
		return "unknown"
	}
}

// RouteRequest is a single inbound routing request.
type RouteRequest struct {
	// Target is the third-party URL taken from the inbound path. It is opaque.
	Target string
	Query  url.Values
	// PathQuery is the inbound path and query string exactly as received.
	PathQuery string
	// BaseURL is the scheme and host the inbound request was addressed to.
	BaseURL string
}

// ProbeResult is what a probe learned about an upstream resource.
// An empty MediaType means the upstream sent no Content-Type.
type ProbeResult struct {
	MediaType  string
	StatusCode int
}

// RouteDecision is the outcome of routing a request.
type RouteDecision struct {
	RedirectTarget string
	CacheControl   string
	Destination    Destination
}

// ViewerPageData holds the template variables for the embedded PDF viewer.
type ViewerPageData struct {
	PDFURL         string
	ClientEmbedURL string
	OpenSidebar    bool
	RequestConfig  string
}
