package protocol

// CPUReport CPU 上报数据
type CPUReport struct {
	UsagePercent float64   `json:"usage_percent"`
	LoadAvg      []float64 `json:"load_avg"` // [1分钟, 5分钟, 15分钟]
}

// MemoryReport 内存上报数据
type MemoryReport struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Free         uint64  `json:"free"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskReport 磁盘上报数据（全盘汇总）
type DiskReport struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Free         uint64  `json:"free"`
	UsagePercent float64 `json:"usage_percent"`
}

// NetworkReport 网络上报数据
type NetworkReport struct {
	UploadSpeed   uint64 `json:"upload_speed"`   // 上行速率(字节/秒)
	DownloadSpeed uint64 `json:"download_speed"` // 下行速率(字节/秒)
	TotalUpload   uint64 `json:"total_upload"`   // 累计上行流量(字节)
	TotalDownload uint64 `json:"total_download"` // 累计下行流量(字节)
}

// MetricReport 探针每个上报周期提交的完整指标
// timestamp/cpu/memory/disk/network/uptime 任一缺失则整体拒绝，ping 缺省为空
type MetricReport struct {
	Timestamp *int64         `json:"timestamp" validate:"required"` // 毫秒时间戳
	CPU       *CPUReport     `json:"cpu" validate:"required"`
	Memory    *MemoryReport  `json:"memory" validate:"required"`
	Disk      *DiskReport    `json:"disk" validate:"required"`
	Network   *NetworkReport `json:"network" validate:"required"`
	Uptime    *uint64        `json:"uptime" validate:"required"` // 运行时间(秒)
	Ping      map[string]int `json:"ping"`                       // 线路 -> 丢包率(0-100)
}

// IntervalResponse 上报间隔查询响应
type IntervalResponse struct {
	Interval int `json:"interval"` // 秒
}
