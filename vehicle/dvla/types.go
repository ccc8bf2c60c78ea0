package dvla

import (
	"fmt"
	"strings"
)

// Request is the vehicle enquiry request body
type Request struct {
	RegistrationNumber string `json:"registrationNumber"`
}

// Error is a single error entry of an unsuccessful enquiry
type Error struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ErrorResponse is returned by the api for non-2xx responses
type ErrorResponse struct {
	Errors []Error `json:"errors"`
	// gateway errors (e.g. invalid api key)
	Message string `json:"message"`
}

func (r ErrorResponse) String() string {
	var res []string
	for _, e := range r.Errors {
		msg := e.Title
		if e.Detail != "" && e.Detail != e.Title {
			msg = fmt.Sprintf("%s (%s)", e.Title, e.Detail)
		}
		res = append(res, msg)
	}

	if len(res) == 0 {
		return r.Message
	}

	return strings.Join(res, ", ")
}
