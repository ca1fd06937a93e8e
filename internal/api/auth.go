// SPDX-License-Identifier: MIT

package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ManuGH/vt2g/internal/log"
)

// authMiddleware enforces bearer token authentication on the API routes. An
// empty configured token disables authentication, which is the expected mode
// for a daemon bound to localhost.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := log.WithComponentFromContext(r.Context(), "auth")

		reqToken := extractBearer(r)
		if reqToken == "" {
			logger.Warn().Str(log.FieldEvent, "auth.missing_token").Msg("authorization header missing")
			writeUnauthorized(w)
			return
		}
		if !tokensEqual(reqToken, s.cfg.APIToken) {
			logger.Warn().Str(log.FieldEvent, "auth.invalid_token").Msg("invalid api token")
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractBearer returns the token of an "Authorization: Bearer ..." header.
func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

// tokensEqual compares tokens in constant time. Hashing first makes the
// comparison independent of token length.
func tokensEqual(got, expected string) bool {
	hg := sha256.Sum256([]byte(got))
	he := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(hg[:], he[:]) == 1
}
