package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Agent 被监控的主机探针
type Agent struct {
	ID     string `gorm:"primaryKey" json:"id"`           // UUID
	Name   string `json:"name"`                           // 显示名称
	Token  string `gorm:"uniqueIndex" json:"-"`           // 上报凭证
	Weight int    `json:"weight"`                         // 排序权重
	// 仅在当前离线已经通知过时非空，恢复上报后清空
	LastNotifiedDownAt *int64 `json:"lastNotifiedDownAt,omitempty"` // 最后离线通知时间（毫秒）
	CreatedAt          int64  `json:"createdAt"`                    // 创建时间（毫秒）
}

func (Agent) TableName() string {
	return "agents"
}

// BeforeCreate GORM钩子：设置创建时间
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().UnixMilli()
	}
	return nil
}

// MetricSnapshot 探针最新指标快照（按 agent 覆盖写入，每个探针至多一行）
type MetricSnapshot struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentID   string `gorm:"uniqueIndex:ux_snapshot_agent" json:"agentId"` // 唯一约束用于 upsert
	Timestamp int64  `json:"timestamp"`                                    // 上报时间（毫秒）

	CPUUsagePercent float64 `json:"cpuUsagePercent"`
	Load1           float64 `json:"load1"`
	Load5           float64 `json:"load5"`
	Load15          float64 `json:"load15"`

	MemoryTotal        uint64  `json:"memoryTotal"`
	MemoryUsed         uint64  `json:"memoryUsed"`
	MemoryFree         uint64  `json:"memoryFree"`
	MemoryUsagePercent float64 `json:"memoryUsagePercent"`

	DiskTotal        uint64  `json:"diskTotal"`
	DiskUsed         uint64  `json:"diskUsed"`
	DiskFree         uint64  `json:"diskFree"`
	DiskUsagePercent float64 `json:"diskUsagePercent"`

	NetworkUploadSpeed   uint64 `json:"networkUploadSpeed"`   // 字节/秒
	NetworkDownloadSpeed uint64 `json:"networkDownloadSpeed"` // 字节/秒
	NetworkTotalUpload   uint64 `json:"networkTotalUpload"`   // 字节
	NetworkTotalDownload uint64 `json:"networkTotalDownload"` // 字节

	Uptime uint64 `json:"uptime"` // 秒

	// 各线路丢包率(0-100)，线路 key 由探针侧配置
	PingLoss datatypes.JSONType[map[string]int] `json:"pingLoss"`
}

func (MetricSnapshot) TableName() string {
	return "metric_snapshots"
}
