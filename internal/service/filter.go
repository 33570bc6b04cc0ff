package service

import "net/url"

// Query parameters consumed by the viewer and never sent upstream.
const (
	ParamOpenSidebar     = "via.open_sidebar"
	ParamConfigFromFrame = "via.request_config_from_frame"
)

var controlParams = map[string]bool{
	ParamOpenSidebar:     true,
	ParamConfigFromFrame: true,
}

// FilterURL appends the non-control parameters of query to base. Keys are
// encoded in sorted order, so the result does not depend on map iteration.
// base is returned unchanged when no parameters remain.
func FilterURL(base string, query url.Values) string {
	q := make(url.Values, len(query))
	for k, v := range query {
		if controlParams[k] {
			continue
		}
		q[k] = v
	}

	encoded := q.Encode()
	if encoded == "" {
		return base
	}
	return base + "?" + encoded
}
