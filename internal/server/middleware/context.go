// Package middleware carries request authentication for the HTTP surface.
package middleware

import "github.com/gin-gonic/gin"

// identityKey is the gin context key holding the authenticated identity.
const identityKey = "auth.identity"

// Identity is the authenticated caller extracted from a verified session
// token. Handlers trust these fields; the middleware is the only writer.
type Identity struct {
	AccountID string
	Username  string
	Role      string
}

// SetIdentity stores the identity on the request context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller identity, or false when the request did not
// pass authentication.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
