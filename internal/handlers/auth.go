package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"media-editor/internal/logging"
	"media-editor/internal/metrics"
)

// AuthMiddleware requires a bearer token matching the configured bcrypt
// hash. It passes everything through when no hash is configured.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.tokenHash) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			metrics.APIAuthTotal.WithLabelValues("missing").Inc()
			unauthorized(w, "Authorization required")
			return
		}

		if !h.checkToken(token) {
			logging.Warn("Rejected API request with an invalid token from %s", r.RemoteAddr)
			metrics.APIAuthTotal.WithLabelValues("failure").Inc()
			unauthorized(w, "Invalid token")
			return
		}

		metrics.APIAuthTotal.WithLabelValues("success").Inc()
		next.ServeHTTP(w, r)
	})
}

// checkToken compares token against the bcrypt hash. After the first match
// the token's SHA-256 digest is remembered so later requests skip bcrypt.
func (h *Handlers) checkToken(token string) bool {
	digest := sha256.Sum256([]byte(token))
	if known := h.tokenDigest.Load(); known != nil {
		if subtle.ConstantTimeCompare(known[:], digest[:]) == 1 {
			return true
		}
	}

	if err := bcrypt.CompareHashAndPassword(h.tokenHash, []byte(token)); err != nil {
		return false
	}
	h.tokenDigest.Store(&digest)
	return true
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="media-editor"`)
	writeJSONError(w, message, http.StatusUnauthorized)
}
