package service

import (
	"fmt"
	"net/http"
)

const staleWhileRevalidate = 86400

// NoCache is attached to proxy redirects for upstream server errors.
const NoCache = "no-cache"

// ViewerCachePolicy applies when a URL is routed to the PDF viewer. Knowing a
// URL is a PDF stays true even if the upstream status later changes.
var ViewerCachePolicy = publicCache(300)

var proxyCachePolicy = publicCache(60)

// CachePolicy returns the Cache-Control value for a proxy redirect given the
// upstream's final status code. Redirects are followed while probing, so 3xx
// is not normally seen here.
func CachePolicy(status int) string {
	switch {
	case status == http.StatusNotFound:
		// Unlike most 4xx, a 404 can resolve itself, so keep the window short.
		return proxyCachePolicy
	case status < http.StatusInternalServerError:
		return proxyCachePolicy
	default:
		return NoCache
	}
}

func publicCache(maxAge int) string {
	return fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, staleWhileRevalidate)
}
