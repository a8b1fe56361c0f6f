package model

import (
	"encoding/json"
	"time"
)

// QR 二维码溯源记录
// qr_code_id 是印刷在实物上的业务主键，创建后不可修改
type QR struct {
	ID        uint      `json:"-" gorm:"primarykey"`
	QRCodeID  string    `json:"qrCodeId" gorm:"size:50;uniqueIndex;comment:二维码唯一编号"` // 印刷/编码在实体二维码上的唯一ID
	URL       string    `json:"url" gorm:"size:255;comment:跳转地址"`                    // 扫码后的目标地址
	IsUsed    bool      `json:"isUsed" gorm:"default:false;comment:是否已被核验"`          // 首次核验成功后置为true，不会自动复位
	IsActive  bool      `json:"isActive" gorm:"comment:是否启用"`                        // 管理端开关，默认值由业务层填充，不用列默认值以免显式false被吞掉
	IsDeleted bool      `json:"isDeleted" gorm:"default:false;index;comment:软删除标记"`  // 软删除，记录保留用于审计
	Count     int       `json:"count" gorm:"default:0;comment:累计扫码次数"`               // 只增不减，超过限制后仍继续累计
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON 序列化时附带展示状态，管理端直接按status渲染
func (q QR) MarshalJSON() ([]byte, error) {
	type alias QR
	return json.Marshal(struct {
		alias
		Status string `json:"status"`
	}{alias(q), q.Status()})
}

// Status 返回记录的展示状态
func (q *QR) Status() string {
	if q.IsDeleted {
		return "Deleted"
	}
	if !q.IsActive {
		return "Inactive"
	}
	if q.IsUsed {
		return "Used"
	}
	return "Valid"
}
