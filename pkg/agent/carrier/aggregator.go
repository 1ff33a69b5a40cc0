package carrier

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

const aggregateInterval = 5 * time.Second

// aggregator 周期性汇总全部线路窗口并原子发布丢包率
type aggregator struct {
	probers []*prober
	loss    atomic.Value // map[string]int
}

func newAggregator(probers []*prober) *aggregator {
	a := &aggregator{probers: probers}
	a.loss.Store(map[string]int{})
	return a
}

// Run 按固定周期汇总，直到 ctx 取消
func (a *aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(aggregateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.aggregate()
		}
	}
}

// aggregate 对每条线路的窗口副本计算丢包率并整体替换发布的 map
func (a *aggregator) aggregate() {
	loss := make(map[string]int, len(a.probers))
	for _, p := range a.probers {
		loss[p.key] = lossPercent(p.window.Snapshot())
	}
	a.loss.Store(loss)
}

// Snapshot 返回最近一次发布的丢包率，副本可安全修改
func (a *aggregator) Snapshot() map[string]int {
	published := a.loss.Load().(map[string]int)
	snapshot := make(map[string]int, len(published))
	for key, value := range published {
		snapshot[key] = value
	}
	return snapshot
}

// lossPercent 计算窗口内的丢包率百分比，空窗口视为 0
func lossPercent(results []bool) int {
	if len(results) == 0 {
		return 0
	}
	failed := 0
	for _, ok := range results {
		if !ok {
			failed++
		}
	}
	return int(math.Round(float64(failed) * 100 / float64(len(results))))
}
