package auth

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophcam/internal/common"
)

// Resolver extracts a trusted user identity from a request.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// JWTResolver looks for a token in the Authorization header, then the
// session cookie, then the token query parameter.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (j *JWTResolver) Resolve(r *http.Request) (string, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return "", common.ErrUnauthorized
	}
	return GetUserIDFromToken(token, j.secret)
}

// TokenFromRequest returns the raw token carried by r, or "".
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(common.TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get(common.TokenQueryParam)
}
