package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/pkg/httpx"
)

// requireAdmin gates a handler behind the admin authorization check. On
// success the acting admin's identity id is stamped into the request context
// for audit attribution.
func requireAdmin(authz *service.AuthzService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)

			profile, err := authz.AuthorizeAdmin(r.Context(), token)
			if err != nil {
				writeServiceError(w, err)
				return
			}

			ctx := service.WithActor(r.Context(), profile.IdentityID)
			ctx = context.WithValue(ctx, httpx.CtxKeyUserID, profile.IdentityID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
