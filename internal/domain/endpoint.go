package domain

import (
	"fmt"
	"net"
	"strconv"
)

// Endpoint identifies the downstream MLLP server. It is process-wide
// configuration, read-only after startup.
type Endpoint struct {
	Host string
	Port int
}

// ParseEndpoint parses a "host:port" pair.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse endpoint %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("parse endpoint %q: invalid port %q", s, portStr)
	}
	return Endpoint{Host: host, Port: port}, nil
}

// String returns the endpoint in "host:port" form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}
