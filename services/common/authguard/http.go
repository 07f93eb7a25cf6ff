package authguard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultCookieName is the cookie the HTTP adapter reads the bearer
// token from unless configured otherwise.
const DefaultCookieName = "Authentication"

// identityKey is where the HTTP adapter stores the identity in the gin
// context.
const identityKey = "identity"

type httpCarrier struct {
	c          *gin.Context
	cookieName string
}

func (h *httpCarrier) Token() (string, bool) {
	token, err := h.c.Cookie(h.cookieName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (h *httpCarrier) Attach(identity *Identity) {
	h.c.Set(identityKey, identity)
}

// HTTPMiddleware returns a gin middleware that authenticates requests
// via the named cookie. Unauthenticated requests are rejected with 401
// and no further handlers run.
func (g *Guard) HTTPMiddleware(cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		carrier := &httpCarrier{c: c, cookieName: cookieName}
		if err := g.Allow(c.Request.Context(), carrier); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity the HTTP middleware attached to
// the gin context.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok
}
