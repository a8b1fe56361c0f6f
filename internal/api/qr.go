package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Team-Techentia/be-sure-qr/internal/pkg/logger"
	"github.com/Team-Techentia/be-sure-qr/internal/service"
)

// VerifyQR 公开核验接口
// 扫码端拿不到记录不存在/已停用/已删除的区别，统一返回404，避免泄露编号是否存在
func VerifyQR(c *gin.Context) {
	result, err := service.QR.Verify(c.Param("qrCodeId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQRCodeID):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "qrCodeId is required",
			})
		case errors.Is(err, service.ErrQRNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Invalid or inactive QR",
			})
		default:
			logger.Errorf("核验二维码失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "QR verified successfully",
		"data":    result,
	})
}
