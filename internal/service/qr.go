package service

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Team-Techentia/be-sure-qr/internal/config"
	"github.com/Team-Techentia/be-sure-qr/internal/model"
	"github.com/Team-Techentia/be-sure-qr/internal/pkg/database"
	"github.com/Team-Techentia/be-sure-qr/internal/types"
)

var QR = new(QRService)

type QRService struct{}

// qrFilterColumns 列表查询的字段白名单及对应的数据库列名
var qrFilterColumns = map[string]string{
	"qrCodeId":  "qr_code_id",
	"url":       "url",
	"isUsed":    "is_used",
	"isActive":  "is_active",
	"isDeleted": "is_deleted",
	"count":     "count",
}

// QRFilterFields 白名单字段名，供 BuildFilter 使用
var QRFilterFields = []string{"qrCodeId", "url", "isUsed", "isActive", "isDeleted", "count"}

// ScanLimit 扫码次数上限
// 超过上限后核验结果为无效，但计数继续累加，便于统计总扫码量
func ScanLimit() int {
	if config.GlobalConfig != nil && config.GlobalConfig.QR.ScanLimit > 0 {
		return config.GlobalConfig.QR.ScanLimit
	}
	return 10
}

// ImportMaxRows 单次批量导入的最大行数
func ImportMaxRows() int {
	if config.GlobalConfig != nil && config.GlobalConfig.QR.ImportMaxRows > 0 {
		return config.GlobalConfig.QR.ImportMaxRows
	}
	return 1000
}

// isValidURL 校验是否为带scheme和host的绝对URL
// 创建、更新、导入共用同一条校验规则
func isValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

// Create 创建二维码记录
// 先做存在性预检查给出友好错误，唯一索引兜底并发下的重复创建
func (s *QRService) Create(req *types.CreateQRRequest) (*model.QR, error) {
	qrCodeID := strings.TrimSpace(req.QRCodeID)
	if qrCodeID == "" {
		return nil, ErrInvalidQRCodeID
	}

	// url 可选，填了就必须合法
	rawURL := strings.TrimSpace(req.URL)
	if rawURL != "" && !isValidURL(rawURL) {
		return nil, ErrInvalidURL
	}

	// 软删除的记录同样占用编号，删除后不允许复用（保证审计链完整）
	var count int64
	if err := database.DB.Model(&model.QR{}).
		Where("qr_code_id = ?", qrCodeID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询二维码失败: %w", err)
	}
	if count > 0 {
		return nil, ErrQRExists
	}

	qr := &model.QR{
		QRCodeID: qrCodeID,
		URL:      rawURL,
		IsActive: true,
	}
	if req.IsUsed != nil {
		qr.IsUsed = *req.IsUsed
	}
	if req.IsActive != nil {
		qr.IsActive = *req.IsActive
	}

	if err := database.DB.Create(qr).Error; err != nil {
		if isDuplicateErr(err) {
			// 预检查和插入之间有并发窗口，唯一索引才是最终保障
			return nil, ErrQRExists
		}
		return nil, fmt.Errorf("创建二维码失败: %w", err)
	}

	return qr, nil
}

// List 按过滤条件分页查询二维码列表
// rawFilters 来自URL查询串，白名单外的键被静默丢弃；isDeleted 缺省按 false 查
func (s *QRService) List(rawFilters map[string]string, page, limit int) ([]model.QR, *types.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	filter := BuildFilter(rawFilters, QRFilterFields)
	if _, ok := filter["isDeleted"]; !ok {
		filter["isDeleted"] = false
	}

	db := database.DB.Model(&model.QR{})
	for field, value := range filter {
		db = db.Where(fmt.Sprintf("%s = ?", qrFilterColumns[field]), value)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("获取二维码总数失败: %w", err)
	}

	var qrs []model.QR
	if err := db.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&qrs).Error; err != nil {
		return nil, nil, fmt.Errorf("获取二维码列表失败: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	pagination := &types.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}

	return qrs, pagination, nil
}

// Get 查询单个二维码，软删除的记录视为不存在
func (s *QRService) Get(qrCodeID string) (*model.QR, error) {
	qrCodeID = strings.TrimSpace(qrCodeID)
	if qrCodeID == "" {
		return nil, ErrInvalidQRCodeID
	}

	var qr model.QR
	err := database.DB.
		Where("qr_code_id = ? AND is_deleted = ?", qrCodeID, false).
		First(&qr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRNotFound
		}
		return nil, fmt.Errorf("查询二维码失败: %w", err)
	}

	return &qr, nil
}

// Update 更新二维码的可变字段，软删除的记录不允许再修改
func (s *QRService) Update(qrCodeID string, req *types.UpdateQRRequest) (*model.QR, error) {
	qr, err := s.Get(qrCodeID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.URL != nil {
		rawURL := strings.TrimSpace(*req.URL)
		if rawURL != "" && !isValidURL(rawURL) {
			return nil, ErrInvalidURL
		}
		updates["url"] = rawURL
	}
	if req.IsUsed != nil {
		updates["is_used"] = *req.IsUsed
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsDeleted != nil {
		updates["is_deleted"] = *req.IsDeleted
	}

	// 空补丁直接返回当前记录
	if len(updates) == 0 {
		return qr, nil
	}

	if err := database.DB.Model(qr).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新二维码失败: %w", err)
	}

	// 回读落库后的记录，补丁可能刚把 is_deleted 置了 true，这里不按删除标记过滤
	var updated model.QR
	if err := database.DB.Where("qr_code_id = ?", qr.QRCodeID).First(&updated).Error; err != nil {
		return nil, fmt.Errorf("查询二维码失败: %w", err)
	}

	return &updated, nil
}

// SoftDelete 软删除二维码，记录保留在存储中用于审计
func (s *QRService) SoftDelete(qrCodeID string) (*model.QR, error) {
	qr, err := s.Get(qrCodeID)
	if err != nil {
		return nil, err
	}

	if err := database.DB.Model(qr).Update("is_deleted", true).Error; err != nil {
		return nil, fmt.Errorf("删除二维码失败: %w", err)
	}
	qr.IsDeleted = true

	return qr, nil
}

// Verify 核验扫码
// 匹配、计数自增在同一个事务里完成：UPDATE持有行锁到提交，
// 并发核验同一编号时按提交顺序串行累加，不会丢失更新；
// 未匹配（不存在/停用/已删除）统一返回 ErrQRNotFound，不向扫码端泄露记录是否存在
func (s *QRService) Verify(qrCodeID string) (*types.VerifyResult, error) {
	qrCodeID = strings.TrimSpace(qrCodeID)
	if qrCodeID == "" {
		return nil, ErrInvalidQRCodeID
	}

	var qr model.QR
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.QR{}).
			Where("qr_code_id = ? AND is_deleted = ? AND is_active = ?", qrCodeID, false, true).
			Updates(map[string]interface{}{
				"count":   gorm.Expr("count + 1"),
				"is_used": true,
			})
		if res.Error != nil {
			return fmt.Errorf("核验二维码失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// 计数未被触碰
			return ErrQRNotFound
		}
		// 同一事务内回读自增后的计数
		return tx.Where("qr_code_id = ?", qrCodeID).First(&qr).Error
	})
	if err != nil {
		return nil, err
	}

	// 超限后继续计数但上报无效，总扫码量和限内扫码量分开可见
	valid := qr.Count <= ScanLimit() && qr.IsActive && !qr.IsDeleted

	return &types.VerifyResult{
		QRCodeID:   qr.QRCodeID,
		URL:        qr.URL,
		Count:      qr.Count,
		Valid:      valid,
		TotalScans: qr.Count,
	}, nil
}

// BulkInsert 批量导入二维码
// 逐行校验不中断整批，校验失败的行只记入错误列表；
// 插入先试整批（任一行撞唯一索引则整条语句失败），失败后退化为逐行插入做失败隔离
func (s *QRService) BulkInsert(rows []types.ImportRow) (*types.ImportResult, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	if len(rows) > ImportMaxRows() {
		return nil, ErrTooManyRows
	}

	result := &types.ImportResult{
		Errors:      make([]string, 0),
		InsertedIDs: make([]string, 0),
	}

	validRows := make([]model.QR, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		// CSV第1行是表头，数据行从第2行起
		rowNum := i + 2

		qrCodeID := strings.TrimSpace(row.QRCodeID)
		if qrCodeID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: qrCodeId cannot be empty", rowNum))
			continue
		}
		if len(qrCodeID) > 50 {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: qrCodeId too long (max 50 characters)", rowNum))
			continue
		}

		rawURL := strings.TrimSpace(row.URL)
		if rawURL == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: url cannot be empty", rowNum))
			continue
		}
		if !isValidURL(rawURL) {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid URL format", rowNum))
			continue
		}

		// 批内去重：保留首次出现的行
		if seen[qrCodeID] {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Duplicate qrCodeId '%s' in CSV", rowNum, qrCodeID))
			continue
		}
		seen[qrCodeID] = true

		validRows = append(validRows, model.QR{
			QRCodeID: qrCodeID,
			URL:      rawURL,
			IsActive: true,
		})
	}

	if len(validRows) == 0 {
		return result, ErrNoValidRows
	}

	// 第一层：整批插入
	if err := database.DB.Create(&validRows).Error; err == nil {
		result.Successful = len(validRows)
		for _, qr := range validRows {
			result.InsertedIDs = append(result.InsertedIDs, qr.QRCodeID)
		}
		return result, nil
	}

	// 第二层：逐行插入，重复编号和其他失败分别上报
	for i := range validRows {
		qr := validRows[i]
		qr.ID = 0 // 整批插入可能已给切片元素回填过主键
		if err := database.DB.Create(&qr).Error; err != nil {
			result.Failed++
			if isDuplicateErr(err) {
				result.Errors = append(result.Errors, fmt.Sprintf("QR Code '%s' already exists", qr.QRCodeID))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to insert '%s': %v", qr.QRCodeID, err))
			}
			continue
		}
		result.Successful++
		result.InsertedIDs = append(result.InsertedIDs, qr.QRCodeID)
	}

	return result, nil
}

// GenerateBatch 服务端批量生成二维码编号，用于印刷制码
func (s *QRService) GenerateBatch(count int, targetURL string) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if count > ImportMaxRows() {
		return nil, ErrTooManyRows
	}

	records := make([]model.QR, count)
	for i := range records {
		records[i] = model.QR{
			QRCodeID: uuid.New().String(),
			URL:      strings.TrimSpace(targetURL),
			IsActive: true,
		}
	}

	if err := database.DB.CreateInBatches(records, 100).Error; err != nil {
		return nil, fmt.Errorf("批量生成二维码失败: %w", err)
	}

	ids := make([]string, 0, count)
	for _, qr := range records {
		ids = append(ids, qr.QRCodeID)
	}
	return ids, nil
}

// Stats 各状态的记录数和累计扫码量
func (s *QRService) Stats() (map[string]interface{}, error) {
	var total, active, used, deleted int64
	if err := database.DB.Model(&model.QR{}).Where("is_deleted = ?", false).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&model.QR{}).Where("is_deleted = ? AND is_active = ?", false, true).Count(&active).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&model.QR{}).Where("is_deleted = ? AND is_used = ?", false, true).Count(&used).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&model.QR{}).Where("is_deleted = ?", true).Count(&deleted).Error; err != nil {
		return nil, err
	}

	var totalScans int64
	if err := database.DB.Model(&model.QR{}).
		Select("COALESCE(SUM(`count`), 0)").
		Scan(&totalScans).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"total":      total,
		"active":     active,
		"used":       used,
		"deleted":    deleted,
		"totalScans": totalScans,
		"scanLimit":  ScanLimit(),
	}, nil
}

// isDuplicateErr 判断是否唯一键冲突
// 除了gorm的统一翻译外再匹配错误文本，兼容不翻译错误的驱动
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
