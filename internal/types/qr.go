package types

// CreateQRRequest 创建二维码请求
// qrCodeId 必填，其余字段缺省时由模型默认值补齐
type CreateQRRequest struct {
	QRCodeID string `json:"qrCodeId" binding:"required"`
	URL      string `json:"url"`
	IsUsed   *bool  `json:"isUsed"`
	IsActive *bool  `json:"isActive"`
}

// UpdateQRRequest 更新二维码请求
// 只允许修改可变字段，编号和时间戳等系统字段不在结构体内，多余的载荷会被直接丢弃
type UpdateQRRequest struct {
	URL       *string `json:"url"`
	IsUsed    *bool   `json:"isUsed"`
	IsActive  *bool   `json:"isActive"`
	IsDeleted *bool   `json:"isDeleted"`
}

// ImportRow 批量导入的单行数据
type ImportRow struct {
	QRCodeID string `json:"qrCodeId"`
	URL      string `json:"url"`
}

// ImportResult 批量导入结果汇总
type ImportResult struct {
	Successful  int      `json:"successful"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors"`
	InsertedIDs []string `json:"insertedIds"`
}

// GenerateQRRequest 批量生成二维码请求
type GenerateQRRequest struct {
	Count int    `json:"count" binding:"required"`
	URL   string `json:"url"`
}

// Pagination 分页元数据
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// VerifyResult 核验结果
// totalScans 与 count 同值，保留两个字段是为了兼容扫码端的展示逻辑
type VerifyResult struct {
	QRCodeID   string `json:"qrCodeId"`
	URL        string `json:"url"`
	Count      int    `json:"count"`
	Valid      bool   `json:"valid"`
	TotalScans int    `json:"totalScans"`
}
