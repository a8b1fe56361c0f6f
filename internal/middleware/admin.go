package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Team-Techentia/be-sure-qr/internal/config"
)

// AdminAuth 管理员认证中间件
// 管理端只有一个配置化账号，token里的账号必须与配置一致
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// JWT中间件已验证token并写入了username
		username, exists := c.Get("username")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization required",
			})
			c.Abort()
			return
		}

		if config.GlobalConfig == nil || username != config.GlobalConfig.Admin.Username {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin privileges required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
