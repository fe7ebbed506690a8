// Package httpx builds the HTTP clients shared by the indexer, bypass and update checks.
package httpx

import (
	"context"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/dnscache"
	"golang.org/x/net/publicsuffix"
)

var resolver = &dnscache.Resolver{}

type Options struct {
	Timeout   time.Duration // 0 = no client timeout
	UserAgent string
	Cookies   bool
}

// New returns a client with cached DNS lookups and an optional cookie jar.
func New(o Options) *http.Client {
	dialer := &net.Dialer{Timeout: 15 * time.Second, KeepAlive: 30 * time.Second}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ips, err := resolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}
		var lastErr error
		for _, ip := range ips {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}

	c := &http.Client{Timeout: o.Timeout, Transport: &uaTransport{next: tr, ua: o.UserAgent}}
	if o.Cookies {
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		c.Jar = jar
	}
	return c
}

type uaTransport struct {
	next http.RoundTripper
	ua   string
}

func (t *uaTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.ua != "" && r.Header.Get("User-Agent") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", t.ua)
	}
	return t.next.RoundTrip(r)
}
