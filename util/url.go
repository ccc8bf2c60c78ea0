package util

import (
	"fmt"
	"net"
	"strings"
)

// DefaultPort adds the default port to the host if no port is given
func DefaultPort(host string, port int) string {
	scheme := ""
	if i := strings.Index(host, "://"); i >= 0 {
		scheme, host = host[:i+3], host[i+3:]
	}

	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, fmt.Sprintf("%d", port))
	}

	return scheme + host
}
