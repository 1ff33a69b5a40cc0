package service

import (
	"testing"
	"time"

	"github.com/dushixiang/swallow/internal/models"
)

func TestDecideNotify(t *testing.T) {
	now := time.Now().UnixMilli()
	recent := now - 10*time.Minute.Milliseconds()
	expired := now - NotifyCooldown.Milliseconds() - 1
	exactly := now - NotifyCooldown.Milliseconds()

	tests := []struct {
		name           string
		prev           models.Status
		next           models.Status
		lastNotifiedAt *int64
		want           notifyAction
	}{
		{"首次故障立即通知", models.StatusUp, models.StatusDown, nil, notifyDown},
		{"pending转故障也算首次故障", models.StatusPending, models.StatusTimeout, nil, notifyDown},
		{"持续故障未通知过则通知", models.StatusDown, models.StatusDown, nil, notifyDown},
		{"持续故障冷却期内不重复通知", models.StatusDown, models.StatusError, &recent, notifyNone},
		{"持续故障超过冷却期再次通知", models.StatusTimeout, models.StatusTimeout, &expired, notifyDown},
		{"恰好等于冷却期不通知", models.StatusDown, models.StatusDown, &exactly, notifyNone},
		{"故障恢复通知", models.StatusDown, models.StatusUp, &recent, notifyRecovered},
		{"超时恢复也通知", models.StatusTimeout, models.StatusUp, nil, notifyRecovered},
		{"持续正常不通知", models.StatusUp, models.StatusUp, nil, notifyNone},
		{"pending转正常不通知", models.StatusPending, models.StatusUp, nil, notifyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideNotify(tt.prev, tt.next, tt.lastNotifiedAt, now)
			if got != tt.want {
				t.Errorf("decideNotify() = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

func TestStatusFailing(t *testing.T) {
	failing := []models.Status{models.StatusDown, models.StatusTimeout, models.StatusError}
	for _, status := range failing {
		if !status.Failing() {
			t.Errorf("%s 应该属于故障状态", status)
		}
	}
	for _, status := range []models.Status{models.StatusUp, models.StatusPending} {
		if status.Failing() {
			t.Errorf("%s 不应该属于故障状态", status)
		}
	}
}
