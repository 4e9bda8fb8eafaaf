package auth

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophcam/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the identity stored by Middleware, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Middleware resolves the caller's identity before next runs. Requests
// without a valid identity go to onUnauthorized and never reach next.
//
// A token that arrived as a query parameter is persisted in a cookie so
// follow-up requests from the same webview stay authenticated.
func Middleware(resolver Resolver, onUnauthorized func(w http.ResponseWriter, r *http.Request, err error)) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolver.Resolve(r)
			if err != nil || userID == "" {
				if err == nil {
					err = common.ErrUnauthorized
				}
				onUnauthorized(w, r, err)
				return
			}

			if tok := r.URL.Query().Get(common.TokenQueryParam); tok != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     common.TokenCookieName,
					Value:    tok,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next(w, r.WithContext(WithUserID(r.Context(), userID)))
		}
	}
}
