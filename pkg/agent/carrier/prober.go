package carrier

import (
	"context"
	"log/slog"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

const (
	// DefaultWindowSize 每条线路保留的最近探测结果数
	DefaultWindowSize = 100

	probeInterval = 2 * time.Second
	probeTimeout  = 1500 * time.Millisecond
)

// prober 单条线路的探测循环
type prober struct {
	key      string
	target   string
	protocol string
	window   *window
}

func newProber(key, target, protocol string) *prober {
	return &prober{
		key:      key,
		target:   target,
		protocol: protocol,
		window:   newWindow(DefaultWindowSize),
	}
}

// Run 按固定周期探测，直到 ctx 取消
func (p *prober) Run(ctx context.Context) {
	slog.Info("启动线路探测", "key", p.key, "target", p.target, "protocol", p.protocol)

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.window.Push(p.probe())
		}
	}
}

func (p *prober) probe() bool {
	if p.protocol == "icmp" {
		return p.probeICMP()
	}
	return p.probeTCP()
}

// probeTCP 尝试建立 TCP 连接，连上即认为线路可达
func (p *prober) probeTCP() bool {
	conn, err := net.DialTimeout("tcp", p.target, probeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// probeICMP 发送一个 ICMP 回显请求
// 优先使用非特权模式，失败后回退到特权模式（需要 root 或相应能力）
func (p *prober) probeICMP() bool {
	pinger, err := probing.NewPinger(p.target)
	if err != nil {
		return false
	}
	pinger.Count = 1
	pinger.Timeout = probeTimeout

	pinger.SetPrivileged(false)
	if err := pinger.Run(); err != nil {
		pinger.SetPrivileged(true)
		if err := pinger.Run(); err != nil {
			return false
		}
	}
	return pinger.Statistics().PacketsRecv > 0
}
