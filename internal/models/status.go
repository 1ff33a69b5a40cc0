package models

// Status 探测结果状态
type Status string

const (
	StatusPending Status = "pending" // 创建后尚未检测
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Failing 是否属于故障类状态（down/timeout/error）
// pending 不参与告警判定
func (s Status) Failing() bool {
	switch s {
	case StatusDown, StatusTimeout, StatusError:
		return true
	default:
		return false
	}
}
