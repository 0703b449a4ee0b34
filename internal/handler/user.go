package handler

import (
	"net/http"

	"fincontrol/internal/middleware"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the authenticated user (requires AuthMiddleware).
func GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":        user.ID,
			"nome":      user.Nome,
			"email":     user.Email,
			"isAdmin":   user.IsAdmin,
			"createdAt": user.CreatedAt,
		},
	})
}
