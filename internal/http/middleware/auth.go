package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ctxKeyUserID holds the authenticated agency user's id.
const ctxKeyUserID = "userID"

// TokenParser turns a bearer token into the id of the user it was issued to.
// services.AuthService implements it.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the token's subject under "userID" for handlers, the rate limiter
// and the access log.
func RequireAuth(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		tok, ok := bearerToken(raw)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "malformed Authorization header")
			return
		}
		uid, err := p.ParseToken(tok)
		if err != nil || uid == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		c.Set(ctxKeyUserID, uid)
		c.Next()
	}
}

// UserID returns the id stored by RequireAuth. There is no fallback identity:
// unauthenticated requests yield ("", false).
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

func bearerToken(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
