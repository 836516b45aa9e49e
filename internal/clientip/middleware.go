// Package clientip resolves the real client address of admin API requests
// behind edge proxies (Fly.io, Cloudflare, nginx) for rate limiting and
// audit logs.
package clientip

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"sort"
	"strings"
)

type contextKey struct{}

// Info is the resolved client address of a request
type Info struct {
	// Primary is the most trusted single address, used in audit logs.
	Primary string
	// RateLimitKey joins every address seen on the request, anchored by
	// the TCP peer, so a spoofed header alone cannot move a client to a
	// fresh rate-limit bucket.
	RateLimitKey string
}

// proxyHeaders are consulted in priority order. X-Forwarded-For contributes
// only its first hop.
var proxyHeaders = []string{
	"Fly-Client-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
	"X-Forwarded-For",
}

// Middleware resolves the client address, rewrites r.RemoteAddr to it and
// stores Info in the request context. Proxy headers are ignored unless
// trustProxy is set.
func Middleware(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := resolve(r, trustProxy)
			r.RemoteAddr = info.Primary
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, info)))
		})
	}
}

// FromContext returns the Info stored by Middleware, or the zero Info.
func FromContext(ctx context.Context) Info {
	info, _ := ctx.Value(contextKey{}).(Info)
	return info
}

// FromRequest is FromContext(r.Context()).
func FromRequest(r *http.Request) Info {
	return FromContext(r.Context())
}

func resolve(r *http.Request, trustProxy bool) Info {
	peer := hostOnly(r.RemoteAddr)
	seen := map[string]bool{}
	if peer != "" {
		seen[peer] = true
	}

	primary := ""
	if trustProxy {
		for _, h := range proxyHeaders {
			v := r.Header.Get(h)
			if h == "X-Forwarded-For" {
				v, _, _ = strings.Cut(v, ",")
			}
			ip, ok := parseIP(v)
			if !ok {
				continue
			}
			seen[ip] = true
			if primary == "" {
				primary = ip
			}
		}
	}
	if primary == "" {
		primary = peer
	}

	all := make([]string, 0, len(seen))
	for ip := range seen {
		all = append(all, ip)
	}
	sort.Strings(all)
	return Info{Primary: primary, RateLimitKey: strings.Join(all, "|")}
}

// parseIP accepts a bare IPv4 or IPv6 address and returns its canonical
// form. Header values that are not addresses are ignored.
func parseIP(v string) (string, bool) {
	v = strings.Trim(strings.TrimSpace(v), "[]")
	if v == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(v)
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// hostOnly strips the port from a RemoteAddr-style "host:port". Values
// without a port are returned unbracketed.
func hostOnly(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
