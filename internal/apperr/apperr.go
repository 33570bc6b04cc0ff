// Package apperr defines the error kinds surfaced to clients and the rules that
// map transport failures onto them.
package apperr

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Kind identifies a class of failure. The string value is what clients see.
type Kind string

const (
	KindBadURL                   Kind = "BadURL"
	KindUpstreamServiceError     Kind = "UpstreamServiceError"
	KindUnhandledUpstreamFailure Kind = "UnhandledUpstreamFailure"

	// Boundary-only kinds, never produced by Classify.
	KindUnhandledException Kind = "UnhandledException"
	KindHTTPError          Kind = "HTTPError"
)

// ErrTooManyRedirects is returned by the upstream client's redirect policy.
var ErrTooManyRedirects = errors.New("exceeded maximum number of redirects")

// Error is a classified failure. Detail is the original failure's message.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given kind with no underlying cause.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// rule maps errors satisfying match onto kind.
type rule struct {
	kind  Kind
	match func(error) bool
}

// transportRules are evaluated in order; the first match wins.
var transportRules = []rule{
	{KindBadURL, isBadURL},
	{KindUpstreamServiceError, isUpstreamRejection},
}

// Classify maps a transport failure onto a domain error. Failures matching no
// rule become KindUnhandledUpstreamFailure. An *Error is returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	for _, r := range transportRules {
		if r.match(err) {
			return &Error{Kind: r.kind, Detail: err.Error(), Err: err}
		}
	}
	return &Error{Kind: KindUnhandledUpstreamFailure, Detail: err.Error(), Err: err}
}

// unroutablePrefixes start the untyped errors net/http returns, wrapped in a
// *url.Error, for URLs it refuses to dial.
var unroutablePrefixes = []string{
	"unsupported protocol scheme",
	"http: no Host in request URL",
}

func isBadURL(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Op == "parse" || isUnroutable(urlErr.Err) {
			return true
		}
	}

	var (
		escapeErr  url.EscapeError
		hostErr    url.InvalidHostError
		dnsErr     *net.DNSError
		addrErr    *net.AddrError
		parseErr   *net.ParseError
		verifyErr  *tls.CertificateVerificationError
		recordErr  tls.RecordHeaderError
		alertErr   tls.AlertError
		authErr    x509.UnknownAuthorityError
		nameErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &escapeErr), errors.As(err, &hostErr):
		return true
	case errors.As(err, &dnsErr), errors.As(err, &addrErr), errors.As(err, &parseErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED):
		return true
	case errors.As(err, &verifyErr), errors.As(err, &recordErr), errors.As(err, &alertErr):
		return true
	case errors.As(err, &authErr), errors.As(err, &nameErr), errors.As(err, &invalidErr):
		return true
	}
	return false
}

// isUnroutable matches the request URL errors net/http does not export types for.
func isUnroutable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, p := range unroutablePrefixes {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}

// isUpstreamRejection reports failures where a connection was made but the
// upstream, or a proxy in front of it, refused to serve it.
func isUpstreamRejection(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "proxyconnect" {
		return true
	}
	return errors.Is(err, ErrTooManyRedirects) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
