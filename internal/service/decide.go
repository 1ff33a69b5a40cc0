package service

import (
	"time"

	"github.com/dushixiang/swallow/internal/models"
)

// NotifyCooldown 重复故障通知的冷却时间，网站与探针共用同一常量
const NotifyCooldown = time.Hour

// notifyAction 一次状态评估得出的通知动作
type notifyAction int

const (
	notifyNone notifyAction = iota
	notifyDown
	notifyRecovered
)

// decideNotify 通知判定规则
// prev 必须是持久化的上一次状态；lastNotifiedAt 为最后一次故障通知时间（毫秒，可空）
//  1. 首次故障（上次非故障、本次故障）：立即通知
//  2. 持续故障：仅当从未通知过或距上次通知超过冷却时间才再次通知
//  3. 故障恢复（上次故障、本次 up）：通知恢复
//  4. 其余情况（pending 起步、持续正常）：不通知
func decideNotify(prev, next models.Status, lastNotifiedAt *int64, now int64) notifyAction {
	prevFailing := prev.Failing()
	nextFailing := next.Failing()

	switch {
	case !prevFailing && nextFailing:
		return notifyDown
	case prevFailing && nextFailing:
		if lastNotifiedAt == nil || now-*lastNotifiedAt > NotifyCooldown.Milliseconds() {
			return notifyDown
		}
		return notifyNone
	case prevFailing && next == models.StatusUp:
		return notifyRecovered
	default:
		return notifyNone
	}
}
