package device

import (
	"context"
	"net"
	"net/url"
	"time"
)

// TCPReachability treats the network as available when a TCP connection to
// Addr can be opened within Timeout.
type TCPReachability struct {
	Addr    string
	Timeout time.Duration
}

// NewTCPReachability probes the host of rawURL (port 443 for https, 80 otherwise).
func NewTCPReachability(rawURL string, timeout time.Duration) (*TCPReachability, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return &TCPReachability{Addr: net.JoinHostPort(u.Hostname(), port), Timeout: timeout}, nil
}

func (r *TCPReachability) NetworkAvailable(ctx context.Context) bool {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", r.Addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// AlwaysReachable reports the network as available without probing.
type AlwaysReachable struct{}

func (AlwaysReachable) NetworkAvailable(context.Context) bool { return true }
