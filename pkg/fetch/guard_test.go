package fetch

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/datamaps/pkg/errors"
)

func TestFetchAllowedHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	tests := []struct {
		name    string
		hosts   []string
		wantErr bool
	}{
		{"no hosts", nil, true},
		{"other host", []string{"example.com"}, true},
		{"listed host", []string{u.Hostname()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits.Store(0)
			c := NewClient(nil, WithRetry(1, time.Millisecond), WithAllowedHosts(tt.hosts...))
			_, err := c.Fetch(context.Background(), srv.URL)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("Fetch() error = %v, want INVALID_INPUT", err)
				}
				if n := hits.Load(); n != 0 {
					t.Errorf("server hit %d times, want 0", n)
				}
				return
			}
			if err != nil {
				t.Errorf("Fetch() error: %v", err)
			}
		})
	}
}

func TestFetchAllowedHostsOnRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret"))
	}))
	defer target.Close()
	// Same address, different host name: only "127.0.0.1" is listed.
	tu, _ := url.Parse(target.URL)
	redirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://localhost:"+tu.Port()+"/", http.StatusFound)
	}))
	defer redirect.Close()
	ru, _ := url.Parse(redirect.URL)

	c := NewClient(nil, WithRetry(1, time.Millisecond), WithAllowedHosts(ru.Hostname()))
	if _, err := c.Fetch(context.Background(), redirect.URL); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Fetch() error = %v, want INVALID_INPUT", err)
	}
}

func TestFetchPublicOnly(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(nil, WithRetry(3, time.Millisecond), WithPublicOnly())
	_, err := c.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Fetch() error = %v, want INVALID_INPUT", err)
	}
	if !stderrors.Is(err, ErrBlockedAddress) {
		t.Errorf("Fetch() error = %v, want ErrBlockedAddress", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hit %d times, want 0", n)
	}
}

func TestIsPublic(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"8.8.8.8", true},
		{"2606:4700:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
		{"fd00::1", false},
		{"fe80::1", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := IsPublic(netip.MustParseAddr(tt.addr)); got != tt.want {
				t.Errorf("IsPublic(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}
