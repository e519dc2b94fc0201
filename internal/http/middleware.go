package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type sessionKeyType struct{}

// SessionMiddleware ties a request to a browsing session. The client
// echoes X-Session-ID between requests; a missing header starts a
// fresh session.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get("X-Session-ID")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), sessionKeyType{}, sessionID)
		w.Header().Set("X-Session-ID", sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKeyType{}).(string); ok {
		return v
	}
	return ""
}
