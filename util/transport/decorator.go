package transport

import (
	"net/http"
)

// Decorator decorates an outgoing request before handing it to the base transport
type Decorator struct {
	Base      http.RoundTripper
	Decorator func(req *http.Request) error
}

// DecorateHeaders returns a decorator function that sets the given request headers
func DecorateHeaders(headers map[string]string) func(req *http.Request) error {
	return func(req *http.Request) error {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return nil
	}
}

// RoundTrip decorates the request and executes it
func (t *Decorator) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the original request
	req = req.Clone(req.Context())

	if err := t.Decorator(req); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	return t.base().RoundTrip(req)
}

func (t *Decorator) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
