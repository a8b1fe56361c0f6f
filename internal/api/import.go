package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Team-Techentia/be-sure-qr/internal/pkg/logger"
	"github.com/Team-Techentia/be-sure-qr/internal/service"
	"github.com/Team-Techentia/be-sure-qr/internal/types"
)

// ImportQRCodes 批量导入二维码
// 请求体是JSON数组，大文件由调用端分块后再提交，超出上限直接拒绝而不是静默截断
func ImportQRCodes(c *gin.Context) {
	var rows []types.ImportRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Request body must be an array",
		})
		return
	}

	result, err := service.QR.BulkInsert(rows)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRows):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "No data provided",
			})
		case errors.Is(err, service.ErrTooManyRows):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Maximum %d rows allowed per import", service.ImportMaxRows()),
			})
		case errors.Is(err, service.ErrNoValidRows):
			// 全部行都没通过校验，把逐行错误一并返回
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "No valid QR entries found",
				"details": result,
			})
		default:
			logger.Errorf("批量导入失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
		}
		return
	}

	RespondImportResult(c, result)
}

// RespondImportResult 分级响应导入结果：全部成功200，部分成功207，全部失败400
// 三种情况都带回详细报告，调用端据此渲染逐行诊断
func RespondImportResult(c *gin.Context, result *types.ImportResult) {
	switch {
	case result.Failed == 0:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Successfully imported %d QR code(s)", result.Successful),
			"details": result,
		})
	case result.Successful == 0:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "All imports failed",
			"details": result,
		})
	default:
		c.JSON(http.StatusMultiStatus, gin.H{
			"success": true,
			"message": fmt.Sprintf("Partially successful: %d imported, %d failed", result.Successful, result.Failed),
			"details": result,
		})
	}
}

// GetImportTemplate 返回CSV导入模板的列定义和示例行
func GetImportTemplate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"headers": []string{"qrCodeId", "url"},
			"example": gin.H{
				"qrCodeId": "QR123",
				"url":      "https://example.com",
			},
		},
	})
}
