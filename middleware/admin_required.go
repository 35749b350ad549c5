// file: middleware/admin_required.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"school-vote/logger"
	"school-vote/services"
)

// TokenVerifier resolves a session token id into an AdminToken.
type TokenVerifier interface {
	Verify(id string) (services.AdminToken, bool)
}

// AdminRequired lets a request through only when the session carries a
// token the gate still recognises. Others are sent to the password page.
// A stale token id is removed from the session.
func AdminRequired(gate TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(SessionAdminToken).(string)

		tok, ok := gate.Verify(id)
		logger.Debug.Printf("AdminRequired Middleware - token present=%v, valid=%v", id != "", ok)
		if !ok {
			if id != "" {
				session.Delete(SessionAdminToken)
				if err := session.Save(); err != nil {
					logger.Error.Printf("AdminRequired Middleware - failed to clear stale token: %v", err)
				}
			}
			c.Redirect(http.StatusFound, "/results/auth")
			c.Abort()
			return
		}

		c.Set(ContextAdminToken, tok)
		c.Next()
	}
}

// AdminTokenFrom returns the token placed in the context by AdminRequired.
func AdminTokenFrom(c *gin.Context) (services.AdminToken, bool) {
	v, ok := c.Get(ContextAdminToken)
	if !ok {
		return services.AdminToken{}, false
	}
	tok, ok := v.(services.AdminToken)
	return tok, ok
}
