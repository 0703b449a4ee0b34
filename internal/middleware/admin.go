package middleware

import (
	"net/http"

	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware rejects requests from non-admin users. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "Acesso negado. Requer privilégios de administrador.")
			c.Abort()
			return
		}
		c.Next()
	}
}
