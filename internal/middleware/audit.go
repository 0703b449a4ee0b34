package middleware

import (
	"bytes"
	"io"

	"fincontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxAuditBody = 2000

// AuditMiddleware records method, path and a truncated request body for
// every authenticated request. Must run after AuthMiddleware.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if user := CurrentUser(c); user != nil {
			userID = user.ID
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		// only record operations of logged-in users
		if userID == 0 {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 {
			body := bodyBytes
			if len(body) > maxAuditBody {
				body = body[:maxAuditBody]
			}
			action += " " + string(body)
		}

		entry := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&entry).Error
	}
}
