package middleware

import (
	"log"
	"net/http"

	"forum_backend/internal/service"
)

// ActivityMiddleware records presence for authenticated requests. It sits
// after AuthMiddleware; anonymous requests pass straight through. Failures
// are logged and swallowed: presence is best-effort and must never fail a
// request.
func ActivityMiddleware(presence *service.PresenceService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := GetUserIDFromContext(r.Context()); ok {
				if err := presence.MarkSeen(r.Context(), userID); err != nil {
					log.Printf("[Activity] mark seen user=%d: %v", userID, err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
