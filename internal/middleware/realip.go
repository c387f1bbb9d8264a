package middleware

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP is the sentinel used when no caller address can be determined.
const UnknownIP = "unknown"

// ClientIP resolves the caller address: first entry of X-Forwarded-For
// (trusted reverse proxy), then X-Real-IP, then the RemoteAddr host,
// falling back to the "unknown" sentinel.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			first = xff[:idx]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
	return UnknownIP
}
