package handler

import (
	"crypto/subtle"
	"net/http"
	"net/netip"
	"strings"

	"go.uber.org/zap"
)

// CallbackGuard admits provider callbacks that carry the shared token from
// the registered callback URL and, when an allowlist is set, come from an
// allowed network.
type CallbackGuard struct {
	token      []byte
	allow      []netip.Prefix
	trustProxy bool
	log        *zap.Logger
}

func NewCallbackGuard(token string, allow []netip.Prefix, trustProxy bool, log *zap.Logger) *CallbackGuard {
	return &CallbackGuard{token: []byte(token), allow: allow, trustProxy: trustProxy, log: log}
}

func (g *CallbackGuard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr, addrOK := g.sourceAddr(r)

		if !g.tokenValid(r.URL.Query().Get("token")) {
			g.log.Warn("Rejected callback with bad token", zap.String("source", addr.String()))
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if len(g.allow) > 0 && (!addrOK || !g.allowed(addr)) {
			g.log.Warn("Rejected callback from disallowed source", zap.String("source", addr.String()))
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *CallbackGuard) tokenValid(got string) bool {
	if len(g.token) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), g.token) == 1
}

func (g *CallbackGuard) allowed(addr netip.Addr) bool {
	for _, p := range g.allow {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// sourceAddr is the peer address, or the hop appended by our proxy to
// X-Forwarded-For when the proxy is trusted.
func (g *CallbackGuard) sourceAddr(r *http.Request) (netip.Addr, bool) {
	if g.trustProxy {
		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			hops := strings.Split(xff[len(xff)-1], ",")
			if addr, err := netip.ParseAddr(strings.TrimSpace(hops[len(hops)-1])); err == nil {
				return addr.Unmap(), true
			}
		}
	}

	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(r.RemoteAddr); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}
