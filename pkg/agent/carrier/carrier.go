package carrier

import (
	"context"

	"github.com/dushixiang/swallow/pkg/agent/config"
)

// Carrier 线路质量探测管理器
// 每条线路一个独立探测循环，外加一个汇总循环，
// 上报时通过 Snapshot 读取最近一次发布的丢包率。
type Carrier struct {
	probers    []*prober
	aggregator *aggregator
}

func New(routes []config.Route) *Carrier {
	probers := make([]*prober, 0, len(routes))
	for _, route := range routes {
		probers = append(probers, newProber(route.Key, route.Target, route.Protocol))
	}
	return &Carrier{
		probers:    probers,
		aggregator: newAggregator(probers),
	}
}

// Start 启动全部探测循环与汇总循环
func (c *Carrier) Start(ctx context.Context) {
	for _, p := range c.probers {
		go p.Run(ctx)
	}
	go c.aggregator.Run(ctx)
}

// Snapshot 返回各线路最近发布的丢包率（线路标识 -> 0-100）
func (c *Carrier) Snapshot() map[string]int {
	return c.aggregator.Snapshot()
}
