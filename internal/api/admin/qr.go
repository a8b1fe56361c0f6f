package admin

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Team-Techentia/be-sure-qr/internal/api"
	"github.com/Team-Techentia/be-sure-qr/internal/pkg/logger"
	"github.com/Team-Techentia/be-sure-qr/internal/service"
	"github.com/Team-Techentia/be-sure-qr/internal/types"
)

// CreateQR 创建二维码
func CreateQR(c *gin.Context) {
	var req types.CreateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "qrCodeId is required",
		})
		return
	}

	qr, err := service.QR.Create(&req)
	if err != nil {
		handleQRError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "QR created successfully",
		"data":    qr,
	})
}

// GetQRs 分页查询二维码列表
// 过滤字段有白名单，白名单外的查询键被静默忽略
func GetQRs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	// 收集原始查询参数，类型归一化交给查询构造器
	rawFilters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			rawFilters[key] = values[0]
		}
	}

	qrs, pagination, err := service.QR.List(rawFilters, page, limit)
	if err != nil {
		handleQRError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "QRs fetched successfully",
		"data": gin.H{
			"qrs":        qrs,
			"pagination": pagination,
		},
	})
}

// GetQR 查询单个二维码
func GetQR(c *gin.Context) {
	qr, err := service.QR.Get(c.Param("qrCodeId"))
	if err != nil {
		handleQRError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "QRs fetched successfully",
		"data":    qr,
	})
}

// UpdateQR 更新二维码
// 请求结构体只收可变字段，载荷里的编号、时间戳等系统字段在绑定时就被丢弃
func UpdateQR(c *gin.Context) {
	var req types.UpdateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	qr, err := service.QR.Update(c.Param("qrCodeId"), &req)
	if err != nil {
		handleQRError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "QR updated successfully",
		"data":    qr,
	})
}

// DeleteQR 软删除二维码，记录保留用于审计
func DeleteQR(c *gin.Context) {
	qr, err := service.QR.SoftDelete(c.Param("qrCodeId"))
	if err != nil {
		handleQRError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "QR deleted successfully",
		"data":    qr,
	})
}

// GenerateQRCodes 批量生成二维码编号，用于印刷制码
func GenerateQRCodes(c *gin.Context) {
	var req types.GenerateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "count is required",
		})
		return
	}

	ids, err := service.QR.GenerateBatch(req.Count, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCount):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "count must be greater than zero",
			})
		case errors.Is(err, service.ErrTooManyRows):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Maximum %d codes allowed per batch", service.ImportMaxRows()),
			})
		default:
			logger.Errorf("批量生成二维码失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Successfully generated %d QR code(s)", len(ids)),
		"data": gin.H{
			"count":       len(ids),
			"insertedIds": ids,
		},
	})
}

// ImportQRCodesCSV 上传CSV文件批量导入
// 服务端解析CSV后走与JSON导入相同的批量管道
func ImportQRCodesCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "CSV file is required",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to open uploaded file",
		})
		return
	}
	defer src.Close()

	// 检测并跳过BOM头
	bomBuffer := make([]byte, 3)
	if _, err := src.Read(bomBuffer); err != nil || bomBuffer[0] != 0xEF || bomBuffer[1] != 0xBB || bomBuffer[2] != 0xBF {
		// 如果不是BOM头，回到文件开始处
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to read uploaded file",
			})
			return
		}
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // 允许每行不同的字段数

	// 读取并跳过第一行（表头）
	if _, err := reader.Read(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid CSV file",
		})
		return
	}

	rows := make([]types.ImportRow, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 读取失败的行交给管道按空行处理，行号对齐
			rows = append(rows, types.ImportRow{})
			continue
		}

		row := types.ImportRow{}
		if len(record) > 0 {
			row.QRCodeID = strings.TrimSpace(record[0])
		}
		if len(record) > 1 {
			row.URL = strings.TrimSpace(record[1])
		}
		rows = append(rows, row)
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
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "No valid QR entries found",
				"details": result,
			})
		default:
			logger.Errorf("CSV导入失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
		}
		return
	}

	api.RespondImportResult(c, result)
}

// handleQRError 业务错误到HTTP状态码的统一映射
func handleQRError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQRCodeID):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "qrCodeId is required",
		})
	case errors.Is(err, service.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid URL format",
		})
	case errors.Is(err, service.ErrQRNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "QR not found",
		})
	case errors.Is(err, service.ErrQRExists):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "QR Code already exists",
		})
	default:
		logger.Errorf("二维码操作失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
	}
}
