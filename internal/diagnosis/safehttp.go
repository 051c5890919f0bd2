package diagnosis

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

const maxImageRedirects = 3

// ErrBlockedAddress is returned when an image URL resolves to a non-public address.
var ErrBlockedAddress = errors.New("image host resolves to a blocked address")

// NewImageHTTPClient returns the client used for http(s) image references.
// It only dials public addresses.
func NewImageHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: rejectNonPublic,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxImageRedirects {
				return fmt.Errorf("stopped after %d redirects", maxImageRedirects)
			}
			return nil
		},
	}
}

// rejectNonPublic runs after DNS resolution, on the address actually dialed.
func rejectNonPublic(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	if !publicAddr(addr.Unmap()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addr)
	}
	return nil
}

func publicAddr(addr netip.Addr) bool {
	if !addr.IsValid() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return false
	}
	// carrier-grade NAT, 100.64.0.0/10
	if addr.Is4() && netip.MustParsePrefix("100.64.0.0/10").Contains(addr) {
		return false
	}
	return true
}
