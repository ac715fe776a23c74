package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the caller address the way the tracking contract requires:
// first X-Forwarded-For value (trimmed), then X-Real-IP, then RemoteAddr with
// the port stripped.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	// SplitHostPort also unbrackets IPv6 literals like "[::1]:8080".
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
