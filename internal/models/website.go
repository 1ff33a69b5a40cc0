package models

import (
	"time"

	"gorm.io/gorm"
)

// Website 被监控的网站
type Website struct {
	ID               string `gorm:"primaryKey" json:"id"`            // UUID
	Name             string `json:"name"`                            // 显示名称
	URL              string `json:"url"`                             // 检测地址
	LastCheckedAt    int64  `json:"lastCheckedAt"`                   // 最后检测时间（毫秒）
	LastStatus       Status `gorm:"default:pending" json:"lastStatus"`
	LastStatusCode   int    `json:"lastStatusCode"`                  // 最后一次HTTP状态码
	LastResponseTime int64  `json:"lastResponseTime"`                // 最后响应耗时（毫秒）
	// 仅在当前连续故障已经通知过时非空，恢复后清空
	LastNotifiedDownAt *int64 `json:"lastNotifiedDownAt,omitempty"` // 最后故障通知时间（毫秒）
	CreatedAt          int64  `json:"createdAt"`                    // 创建时间（毫秒）
}

func (Website) TableName() string {
	return "websites"
}

// BeforeCreate GORM钩子：设置创建时间与初始状态
func (w *Website) BeforeCreate(tx *gorm.DB) error {
	if w.CreatedAt == 0 {
		w.CreatedAt = time.Now().UnixMilli()
	}
	if w.LastStatus == "" {
		w.LastStatus = StatusPending
	}
	return nil
}

// StatusEvent 检测事件，仅追加，从不修改或删除
type StatusEvent struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	WebsiteID    string `gorm:"index:idx_event_site_ts" json:"websiteId"`
	Timestamp    int64  `gorm:"index:idx_event_site_ts" json:"timestamp"` // 检测时间（毫秒）
	Status       Status `json:"status"`
	StatusCode   int    `json:"statusCode"`
	ResponseTime int64  `json:"responseTime"` // 毫秒
}

func (StatusEvent) TableName() string {
	return "status_events"
}
