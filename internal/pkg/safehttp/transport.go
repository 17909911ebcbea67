// Package safehttp builds HTTP transports that refuse to reach private
// networks. The generation client uses it when the service URL comes from
// untrusted configuration.
package safehttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// NewTransport returns a clone of http.DefaultTransport whose dialer rejects
// loopback, private and link-local destinations.
func NewTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = DialContext
	return t
}

// DialContext dials addr and closes the connection if the resolved peer is
// not publicly routable.
func DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	ip := net.ParseIP(host)
	if ip == nil {
		conn.Close()
		return nil, fmt.Errorf("failed to parse remote IP for %q", addr)
	}

	if Denied(ip) {
		conn.Close()
		return nil, fmt.Errorf("access to private IP %s is denied", ip)
	}

	return conn, nil
}

// Denied reports whether ip is a loopback, private or link-local address.
func Denied(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
