package apperr

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

// Description is how a failure is presented to clients.
type Description struct {
	Kind   Kind
	Status int
	Title  string
	Detail string
}

type entry struct {
	status int
	title  string
}

// boundaryTable lists the client-facing status and title for each kind.
// KindHTTPError is absent; it takes both from the HTTP error itself.
var boundaryTable = map[Kind]entry{
	KindBadURL:                   {http.StatusBadRequest, "The URL isn't valid"},
	KindUpstreamServiceError:     {http.StatusConflict, "Can't access the page"},
	KindUnhandledUpstreamFailure: {http.StatusExpectationFailed, "Something went wrong fetching the page"},
	KindUnhandledException:       {http.StatusExpectationFailed, "Something went wrong"},
}

// Describe maps any error reaching the HTTP boundary onto a Description.
// Domain errors keep their kind, HTTP errors keep their status, transport
// failures go through Classify and everything else is UnhandledException.
func Describe(err error) Description {
	var ae *Error
	if errors.As(err, &ae) {
		return describeKind(ae.Kind, ae.Detail)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return Description{
			Kind:   KindHTTPError,
			Status: he.Code,
			Title:  http.StatusText(he.Code),
			Detail: fmt.Sprint(he.Message),
		}
	}

	if isTransport(err) {
		c := Classify(err)
		return describeKind(c.Kind, c.Detail)
	}

	return describeKind(KindUnhandledException, err.Error())
}

func describeKind(kind Kind, detail string) Description {
	e, ok := boundaryTable[kind]
	if !ok {
		e = boundaryTable[KindUnhandledException]
	}
	return Description{Kind: kind, Status: e.status, Title: e.title, Detail: detail}
}

func isTransport(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}
