package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/nichenest/nichenest/pkg/jwtx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

// AuthnMiddleware verifies the bearer session token and injects the caller's
// identity into the request context. Handlers must only trust the context
// values set here, never anything else in the request.
func AuthnMiddleware(codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

			claims, err := codec.Verify(raw)
			if err != nil {
				log.Warn("session token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyUsername, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-style error response for bearer auth failures.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", desc)
}
