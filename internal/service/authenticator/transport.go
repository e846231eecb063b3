// Package authenticator attaches the current access token to outbound calls.
//
// It only reads the credential store: it never refreshes and never writes.
// A call that leaves with a stale token fails like any other rejected call.
package authenticator

import (
	"net/http"
	"strings"
)

const (
	HeaderAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

type tokenSource interface {
	CurrentAccessToken() string
}

// Bearer value for the token, empty when there is nothing to attach
func bearer(source tokenSource) string {
	access := strings.TrimSpace(source.CurrentAccessToken())
	if access == "" {
		return ""
	}
	return bearerPrefix + access
}

// Transport is http.RoundTripper adding Authorization header to every request
type Transport struct {
	Source tokenSource
	Base   http.RoundTripper
}

func NewTransport(source tokenSource, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Source: source, Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	value := bearer(t.Source)
	if value == "" {
		return t.Base.RoundTrip(req)
	}

	// RoundTripper must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set(HeaderAuthorization, value)

	return t.Base.RoundTrip(req)
}

// Client with authenticating transport
func NewHTTPClient(source tokenSource) *http.Client {
	return &http.Client{Transport: NewTransport(source, nil)}
}
