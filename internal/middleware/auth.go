package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// AdminAuth returns middleware that authenticates every request against the
// single configured admin token. The vault has one owner; there is no key
// table to look callers up in. Comparison runs over SHA-256 digests in
// constant time, and repeated failures from one address are throttled.
func AdminAuth(token string, limiter *AuthAttemptLimiter) func(http.Handler) http.Handler {
	wantDigest := sha256.Sum256([]byte(token))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attemptKey := clientIPKey(r, "admin_token")
			if limiter != nil && !limiter.Allow(attemptKey) {
				respondError(w, http.StatusTooManyRequests, "rate_limited", "Too many authentication failures")
				return
			}

			presented := extractBearerToken(r)
			if presented == "" {
				if limiter != nil {
					limiter.Failure(attemptKey)
				}
				respondError(w, http.StatusUnauthorized, "unauthorized", "Missing access token")
				return
			}

			gotDigest := sha256.Sum256([]byte(presented))
			if subtle.ConstantTimeCompare(gotDigest[:], wantDigest[:]) != 1 {
				if limiter != nil {
					limiter.Failure(attemptKey)
				}
				respondError(w, http.StatusUnauthorized, "unauthorized", "Invalid access token")
				return
			}

			if limiter != nil {
				limiter.Success(attemptKey)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// SHA256Hex returns the hex-encoded SHA-256 hash of the input.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}
