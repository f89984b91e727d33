package transport

import "net/http"

// Authenticator applies credentials to outgoing requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication. The public registry needs none.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// BearerAuth sends a token in the Authorization header.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// HeaderAuth sends a key in a custom header, as registry mirrors behind an API gateway expect.
type HeaderAuth struct {
	Header string
	Key    string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	if a.Key == "" || a.Header == "" {
		return
	}
	req.Header.Set(a.Header, a.Key)
}

// AuthFor picks an authenticator for an optional API key.
// An empty header means bearer authentication.
func AuthFor(header, key string) Authenticator {
	switch {
	case key == "":
		return &NoAuth{}
	case header == "" || http.CanonicalHeaderKey(header) == "Authorization":
		return &BearerAuth{Token: key}
	default:
		return &HeaderAuth{Header: header, Key: key}
	}
}
