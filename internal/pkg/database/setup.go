package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Team-Techentia/be-sure-qr/internal/config"
	"github.com/Team-Techentia/be-sure-qr/internal/model"
)

// DB 全局数据库连接
var DB *gorm.DB

// Setup 初始化数据库连接和迁移
func Setup() error {
	var err error

	// 获取配置
	cfg := config.GlobalConfig.Database

	// 构建DSN
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	// 连接数据库
	// TranslateError 把驱动的唯一键冲突统一翻译成 gorm.ErrDuplicatedKey，
	// 业务层据此区分重复编号和其他存储错误
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return Migrate(DB)
}

// Migrate 执行自动迁移
// qr_code_id 上的唯一索引是并发创建/导入时防重复的最终保障，
// 业务层的存在性预检查只是为了给出更友好的错误提示
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.QR{},
		&model.AdminLoginLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
