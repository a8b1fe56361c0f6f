package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Team-Techentia/be-sure-qr/internal/pkg/logger"
	"github.com/Team-Techentia/be-sure-qr/internal/service"
)

// GetSystemStats 获取二维码各状态的统计数据
func GetSystemStats(c *gin.Context) {
	stats, err := service.QR.Stats()
	if err != nil {
		logger.Errorf("获取统计数据失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stats fetched successfully",
		"data":    stats,
	})
}
