package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connectfour/pkg/httputil"
)

// Authorizer checks that a control token was issued for a game.
type Authorizer interface {
	Authorize(token, gameID string) error
}

// ControlTokenMiddleware rejects requests on /:id routes that do not carry the
// game's control token.
func ControlTokenMiddleware(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := auth.Authorize(token, c.Param("id")); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid control token"})
			return
		}

		c.Next()
	}
}
