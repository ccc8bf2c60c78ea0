package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

var (
	// JSONEncoding specifies application/json
	JSONEncoding = map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}

	// AcceptJSON accepting application/json
	AcceptJSON = map[string]string{
		"Accept": "application/json",
	}
)

// StatusError indicates unsuccessful http response
type StatusError struct {
	resp *http.Response
	msg  string
}

// NewStatusError creates StatusError for given response
func NewStatusError(resp *http.Response) *StatusError {
	return &StatusError{resp: resp}
}

// WithMessage adds a server-provided reason to the error
func (e *StatusError) WithMessage(msg string) *StatusError {
	e.msg = msg
	return e
}

func (e *StatusError) Error() string {
	res := fmt.Sprintf("unexpected status: %d (%s)", e.resp.StatusCode, http.StatusText(e.resp.StatusCode))
	if e.msg != "" {
		res += ": " + e.msg
	}
	return res
}

// StatusCode returns the response's status code
func (e *StatusError) StatusCode() int {
	return e.resp.StatusCode
}

// HasStatus returns true if the response's status code matches any of the given codes
func (e *StatusError) HasStatus(codes ...int) bool {
	for _, code := range codes {
		if e.resp.StatusCode == code {
			return true
		}
	}
	return false
}

// ResponseError turns an HTTP status code into an error
func ResponseError(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewStatusError(resp)
	}
	return nil
}

// decodeJSON reads HTTP response and decodes JSON body if error is nil
func decodeJSON(resp *http.Response, res interface{}) error {
	if err := ResponseError(resp); err != nil {
		_ = json.NewDecoder(resp.Body).Decode(res)
		return err
	}

	return json.NewDecoder(resp.Body).Decode(res)
}

// New builds and executes HTTP request and returns the response
func New(method, uri string, data io.Reader, headers ...map[string]string) (*http.Request, error) {
	req, err := http.NewRequest(method, uri, data)
	if err == nil {
		for _, headers := range headers {
			for k, v := range headers {
				req.Header.Add(k, v)
			}
		}
	}

	return req, err
}

// MarshalJSON marshals JSON into an io.Reader
func MarshalJSON(data interface{}) io.Reader {
	if data == nil {
		return nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return &errorReader{err: err}
	}

	return bytes.NewReader(b)
}

type errorReader struct {
	err error
}

func (r *errorReader) Read(p []byte) (int, error) {
	return 0, r.err
}
