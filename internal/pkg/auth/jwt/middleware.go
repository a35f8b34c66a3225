package jwt

import (
	"context"
	"net/http"
	"strings"

	"paperboard/internal/pkg/logx"
)

type contextKey string

// contextPayloadKey stores the parsed identity in the request context.
const contextPayloadKey contextKey = "identity_payload"

// IdentityExtractor validates a Bearer token when one is present and stores the
// identity in the request context. It never rejects a request itself; requests
// without a usable token continue as anonymous and each handler decides whether
// anonymous access is allowed.
func IdentityExtractor(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(parts[1], secret)
			if err != nil {
				logx.Warn("invalid identity token, continuing as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), contextPayloadKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PayloadFromContext returns the authenticated identity, or nil for anonymous
// requests.
func PayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(contextPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}
