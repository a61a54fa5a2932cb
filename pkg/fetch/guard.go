package fetch

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/matzehuels/datamaps/pkg/errors"
)

// ErrBlockedAddress is returned when a request would connect to a loopback,
// private, link-local or otherwise non-public address.
var ErrBlockedAddress = stderrors.New("address is not public")

// WithAllowedHosts restricts fetching to the given host names (compared
// without port, case-insensitively). With no hosts, every remote fetch is
// refused. Redirects are held to the same list.
func WithAllowedHosts(hosts ...string) Option {
	return func(c *Client) {
		c.allowed = make(map[string]bool, len(hosts))
		for _, h := range hosts {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				c.allowed[h] = true
			}
		}
	}
}

// WithPublicOnly refuses connections to non-public addresses. The check runs
// on the resolved address at dial time, so DNS names pointing at internal
// addresses are refused too. Proxies from the environment are not used.
func WithPublicOnly() Option {
	return func(c *Client) { c.publicOnly = true }
}

// hostAllowed reports whether rawURL may be fetched under the allow-list.
func (c *Client) hostAllowed(rawURL string) error {
	if c.allowed == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL")
	}
	if !c.allowed[strings.ToLower(u.Hostname())] {
		return errors.New(errors.ErrCodeInvalidInput, "remote host %q is not allowed", u.Hostname())
	}
	return nil
}

// guard wraps base so that it honors the allow-list on redirects and, when
// publicOnly is set, dials public addresses only.
func (c *Client) guard(base *http.Client) *http.Client {
	guarded := *base
	if c.allowed != nil {
		guarded.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return stderrors.New("stopped after 10 redirects")
			}
			return c.hostAllowed(req.URL.String())
		}
	}
	if c.publicOnly {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
			Control:   publicOnlyControl,
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.Proxy = nil
		tr.DialContext = dialer.DialContext
		guarded.Transport = tr
	}
	return &guarded
}

func publicOnlyControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	if !IsPublic(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addr)
	}
	return nil
}

// IsPublic reports whether addr is a globally routable unicast address.
func IsPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		addr.IsUnspecified():
		return false
	}
	// Carrier-grade NAT (100.64.0.0/10) is not covered by IsPrivate.
	return !cgnat.Contains(addr)
}

var cgnat = netip.MustParsePrefix("100.64.0.0/10")
