package middleware

import (
	"io"
	"net/http"
)

// Bodies bigger than this are not worth draining; the connection is dropped instead.
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest drains whatever the handler left unread in the request body and closes it,
// so the keep-alive connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
				_ = r.Body.Close()
			}
		})
	}
}
