package router

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Team-Techentia/be-sure-qr/internal/api"
	"github.com/Team-Techentia/be-sure-qr/internal/api/admin"
	"github.com/Team-Techentia/be-sure-qr/internal/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, userFS, adminFS http.FileSystem) {
	// 方法不匹配返回405而不是gin默认的404
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"message": fmt.Sprintf("Method %s Not Allowed", c.Request.Method),
		})
	})

	// 健康检查接口（不需要任何中间件）
	r.GET("/api/v1/health", api.SimpleHealthCheck)

	// 设置静态文件路由 - 直接访问静态资源文件
	r.StaticFS("/static/user", userFS)
	r.StaticFS("/static/admin", adminFS)

	// 设置前端SPA路由
	setupSPARoutes(r, userFS, adminFS)

	// 公开API路由
	setupAPIRoutes(r)

	// 管理员API路由
	setupAdminAPIRoutes(r)
}

// setupAPIRoutes 设置公开API路由（扫码端，无需认证）
func setupAPIRoutes(r *gin.Engine) {
	apiGroup := r.Group("/api/v1")
	apiGroup.Use(middleware.Logger())
	apiGroup.Use(middleware.Recovery())
	apiGroup.Use(middleware.Cors())

	qr := apiGroup.Group("/qr")
	{
		qr.GET("/verify/:qrCodeId", api.VerifyQR)          // 核验扫码
		qr.POST("/import", api.ImportQRCodes)              // 批量导入（JSON数组）
		qr.GET("/import/template", api.GetImportTemplate)  // 导入模板的列定义
	}
}

// setupAdminAPIRoutes 设置管理员API路由
func setupAdminAPIRoutes(r *gin.Engine) {
	adminGroup := r.Group("/api/v1/admin")
	adminGroup.Use(middleware.Logger())
	adminGroup.Use(middleware.Recovery())
	adminGroup.Use(middleware.Cors())

	// 管理员登录
	adminGroup.POST("/login", admin.Login)

	// 需要管理员权限的路由
	authorized := adminGroup.Group("/")
	authorized.Use(middleware.JWT())
	authorized.Use(middleware.AdminAuth())
	{
		// 二维码管理
		qrs := authorized.Group("/qr")
		{
			qrs.GET("", admin.GetQRs)                    // 获取二维码列表
			qrs.POST("", admin.CreateQR)                 // 创建二维码
			qrs.POST("/generate", admin.GenerateQRCodes) // 批量生成编号
			qrs.POST("/import", admin.ImportQRCodesCSV)  // 上传CSV批量导入
			qrs.GET("/:qrCodeId", admin.GetQR)           // 获取单个二维码
			qrs.PUT("/:qrCodeId", admin.UpdateQR)        // 更新二维码
			qrs.DELETE("/:qrCodeId", admin.DeleteQR)     // 软删除二维码
		}

		// 系统管理
		system := authorized.Group("/system")
		{
			system.GET("/stats", admin.GetSystemStats)     // 获取统计数据
			system.GET("/login-logs", admin.GetLoginLogs)  // 获取登录日志
		}
	}
}

// setupSPARoutes 设置前端SPA路由
func setupSPARoutes(r *gin.Engine, userFS, adminFS http.FileSystem) {
	// 直接处理管理员页面请求 - 使用GET方法明确匹配路径
	r.GET("/admin", serveAdminIndex(adminFS))
	r.GET("/admin/*path", serveAdminPath(adminFS))

	// 扫码端前端 - 处理根路径请求，这个放在最后
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path

		// 如果是API请求，直接跳过
		if strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/static/") {
			c.Next()
			return
		}

		// 使用扫码端静态文件系统
		serveUserFile(c, path, userFS)
	})
}

// serveAdminIndex 提供管理员首页
func serveAdminIndex(adminFS http.FileSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		file, err := adminFS.Open("/index.html")
		if err != nil {
			c.String(http.StatusNotFound, "admin page not found")
			return
		}
		defer file.Close()

		http.ServeContent(c.Writer, c.Request, "index.html", time.Now(), file.(io.ReadSeeker))
	}
}

// serveAdminPath 提供管理员其他路径
func serveAdminPath(adminFS http.FileSystem) gin.HandlerFunc {
	fileServer := http.FileServer(adminFS)
	return func(c *gin.Context) {
		path := c.Param("path")

		// 移除前导斜杠
		if path != "" && path[0] == '/' {
			path = path[1:]
		}

		// 检查文件是否存在
		f, err := adminFS.Open(path)
		if err == nil {
			// 文件存在，关闭文件并提供服务
			f.Close()
			c.Request.URL.Path = "/" + path
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}

		// 文件不存在，返回index.html（SPA路由交给前端处理）
		c.Request.URL.Path = "/"
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// serveUserFile 提供扫码端文件
func serveUserFile(c *gin.Context, path string, userFS http.FileSystem) {
	fileServer := http.FileServer(userFS)

	// 检查文件是否存在
	f, err := userFS.Open(path)
	if err == nil {
		// 文件存在，关闭文件并提供服务
		f.Close()
		fileServer.ServeHTTP(c.Writer, c.Request)
		return
	}

	// 文件不存在，返回index.html
	c.Request.URL.Path = "/"
	fileServer.ServeHTTP(c.Writer, c.Request)
}
