package public

import (
	"fmt"
	"net"
	"os"
)

var (
	// Listener is the configured listen address
	Listener string
	// Addr is the public address derived from the listener
	Addr string
)

func genericInterface(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// SetListener stores the listen address and derives the public address unless already set
func SetListener(addr string) (string, error) {
	Listener = addr

	var err error
	if Addr == "" {
		_, err = SetAddr(Listener)
	}

	return Listener, err
}

// SetAddr derives the public http address, replacing generic interfaces with the host name
func SetAddr(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}

	if host == "" || genericInterface(host) {
		if host, err = os.Hostname(); err != nil {
			return "", err
		}
	}

	Addr = fmt.Sprintf("http://%s", net.JoinHostPort(host, port))

	return Addr, nil
}
