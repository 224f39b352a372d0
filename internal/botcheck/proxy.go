package botcheck

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyPolicy lists the peers allowed to report the client address through
// X-Forwarded-For or X-Real-IP. The zero value trusts nobody: the client is
// always the TCP peer.
type ProxyPolicy struct {
	trusted []netip.Prefix
}

// ParseTrustedProxies accepts a comma-separated list of IPs and CIDRs.
func ParseTrustedProxies(value string) (ProxyPolicy, error) {
	var p ProxyPolicy
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			prefix, err := netip.ParsePrefix(part)
			if err != nil {
				return ProxyPolicy{}, fmt.Errorf("trusted proxy %q: %w", part, err)
			}
			p.trusted = append(p.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return ProxyPolicy{}, fmt.Errorf("trusted proxy %q: %w", part, err)
		}
		addr = addr.Unmap()
		p.trusted = append(p.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return p, nil
}

func (p ProxyPolicy) trusts(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the originating client address. Forwarding headers are
// read only when the TCP peer is a trusted proxy. X-Forwarded-For is walked
// right to left and the first untrusted hop is the client.
func (p ProxyPolicy) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !p.trusts(peer) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !p.trusts(hop) || i == 0 {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		if _, err := netip.ParseAddr(ip); err == nil {
			return ip
		}
	}
	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
