package server

import (
	"crypto/subtle"
	"net"
	"net/http"
)

// accessPolicy enforces the optional IP allowlist and shared token.
// Both checks are skipped when unconfigured, matching a shop admin
// directory that is protected at the web server level instead.
func (s *Server) accessPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.cfg.AllowedIPs) > 0 {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !containsIP(s.cfg.AllowedIPs, host) {
				s.log.WithField("ip", host).Warn("request from non-allowlisted address")
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
		}

		if s.cfg.AccessToken != "" {
			provided := r.Header.Get("X-CAO-Token")
			if provided == "" {
				provided = r.Header.Get("X-Api-Key")
			}
			if provided == "" {
				provided = param(r, "token")
			}
			if subtle.ConstantTimeCompare([]byte(s.cfg.AccessToken), []byte(provided)) != 1 {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func containsIP(list []string, ip string) bool {
	for _, allowed := range list {
		if allowed == ip {
			return true
		}
	}
	return false
}
