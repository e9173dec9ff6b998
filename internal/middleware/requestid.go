// Package middleware provides HTTP middleware for the Synod API.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/synod-io/synod/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID tags every request with an ID for log correlation. An
// inbound X-Request-ID is honored so IDs survive a fronting proxy;
// otherwise a fresh one is minted. The ID goes onto the context for
// the request logger and back out on the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = newID()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
