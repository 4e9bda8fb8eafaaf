package common

// Header and cookie names used by the HTTP surface.
const (
	APIKeyHeaderName = "X-API-Key"
	TokenCookieName  = "gophcam_token"
	TokenQueryParam  = "token"
)
