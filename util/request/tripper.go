package request

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/dvla-io/dvla/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reqMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dvla",
	Subsystem: "http",
	Name:      "request_total",
	Help:      "Total count of outgoing HTTP requests",
}, []string{"host", "status"})

// Tripper is a http.RoundTripper that logs requests and responses at TRACE level
type Tripper struct {
	log  *util.Logger
	base http.RoundTripper
}

// NewTripper creates a logging round tripper
func NewTripper(log *util.Logger, base http.RoundTripper) http.RoundTripper {
	return &Tripper{
		log:  log,
		base: base,
	}
}

func (r *Tripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r.log.TRACE.Println(req.Method, req.URL.String())

	var bld strings.Builder
	if body, err := httputil.DumpRequestOut(req, true); err == nil {
		bld.WriteString("\n")
		bld.Write(bytes.TrimSpace(body))
	}

	resp, err := r.base.RoundTrip(req)
	if err != nil {
		reqMetric.WithLabelValues(req.URL.Hostname(), "error").Inc()
		return resp, err
	}

	reqMetric.WithLabelValues(req.URL.Hostname(), fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if body, err := httputil.DumpResponse(resp, true); err == nil {
		bld.WriteString("\n\n")
		bld.Write(bytes.TrimSpace(body))
	}

	if bld.Len() > 0 {
		r.log.TRACE.Println(bld.String())
	}

	return resp, err
}
