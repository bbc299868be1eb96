// Package clientip extracts the client origin address used for rate limiting
// and audit entries.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the client IP from the request. Uses r.RemoteAddr only;
// proxy headers are not trusted here, a fronting proxy should rewrite
// RemoteAddr itself.
func FromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
