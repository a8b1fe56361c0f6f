package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Team-Techentia/be-sure-qr/internal/config"
	"github.com/Team-Techentia/be-sure-qr/internal/middleware"
	"github.com/Team-Techentia/be-sure-qr/internal/model"
	"github.com/Team-Techentia/be-sure-qr/internal/pkg/database"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 管理员登录
// 管理端只有一个配置化账号（用户名+bcrypt哈希），每次登录尝试都会留痕
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "username and password are required",
		})
		return
	}

	// 记录登录日志信息
	loginLog := model.AdminLoginLog{
		Username:  req.Username,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		LoginTime: time.Now(),
		IsSuccess: false, // 默认为失败，成功时再更新
	}

	adminCfg := config.GlobalConfig.Admin

	// 核对账号
	if req.Username != adminCfg.Username {
		loginLog.FailReason = "用户名错误"
		database.DB.Create(&loginLog)

		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Invalid username or password",
		})
		return
	}

	// 核对密码
	if err := bcrypt.CompareHashAndPassword([]byte(adminCfg.PasswordHash), []byte(req.Password)); err != nil {
		loginLog.FailReason = "密码错误"
		database.DB.Create(&loginLog)

		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Invalid username or password",
		})
		return
	}

	// 生成 token
	token, err := middleware.GenerateToken(req.Username)
	if err != nil {
		loginLog.FailReason = "生成token失败"
		database.DB.Create(&loginLog)

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to generate token",
		})
		return
	}

	// 登录成功，更新日志
	loginLog.IsSuccess = true
	database.DB.Create(&loginLog)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data": gin.H{
			"token": token,
			"user": gin.H{
				"username": req.Username,
			},
		},
	})
}

// GetLoginLogs 获取管理员登录日志
func GetLoginLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	db := database.DB.Model(&model.AdminLoginLog{})

	// 构建查询条件
	if username := c.Query("username"); username != "" {
		db = db.Where("username LIKE ?", "%"+username+"%")
	}
	if status := c.Query("status"); status != "" {
		db = db.Where("is_success = ?", status == "success")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	var logs []model.AdminLoginLog
	if err := db.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login logs fetched successfully",
		"data": gin.H{
			"total": total,
			"items": logs,
		},
	})
}
