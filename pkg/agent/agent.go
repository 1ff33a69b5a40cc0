package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dushixiang/swallow/internal/protocol"
	"github.com/dushixiang/swallow/pkg/agent/carrier"
	"github.com/dushixiang/swallow/pkg/agent/collector"
	"github.com/dushixiang/swallow/pkg/agent/config"
	"github.com/jpillora/backoff"
)

// TokenHeader 上报凭证头，与服务端约定一致
const TokenHeader = "X-Agent-Token"

// DefaultReportInterval 服务端不可达时的兜底上报间隔（秒）
const DefaultReportInterval = 60

// Agent 监控探针
// 周期性采集系统指标与线路丢包率并上报服务端，
// 上报失败按指数退避重试，成功后恢复正常节奏。
type Agent struct {
	cfg       *config.Config
	collector *collector.SystemCollector
	carrier   *carrier.Carrier
	client    *http.Client
}

func New(cfg *config.Config) *Agent {
	return &Agent{
		cfg:       cfg,
		collector: collector.NewSystemCollector(),
		carrier:   carrier.New(cfg.Routes),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start 启动探针，阻塞直到 ctx 取消
func (a *Agent) Start(ctx context.Context) error {
	a.carrier.Start(ctx)

	interval := a.fetchInterval(ctx)
	slog.Info("探针启动", "endpoint", a.cfg.Server.Endpoint, "interval", interval)

	retry := &backoff.Backoff{
		Min:    time.Second,
		Max:    time.Minute,
		Factor: 2,
		Jitter: true,
	}

	timer := time.NewTimer(time.Duration(interval) * time.Second)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("探针已停止")
			return nil
		case <-timer.C:
		}

		if err := a.reportOnce(ctx); err != nil {
			wait := retry.Duration()
			slog.Warn("上报失败，稍后重试", "error", err, "wait", wait)
			timer.Reset(wait)
			continue
		}

		retry.Reset()
		// 每次成功上报后重新询问间隔，便于服务端在线调整
		interval = a.fetchInterval(ctx)
		timer.Reset(time.Duration(interval) * time.Second)
	}
}

// reportOnce 采集一次指标并上报
func (a *Agent) reportOnce(ctx context.Context) error {
	report, err := a.collector.Collect()
	if err != nil {
		return fmt.Errorf("采集系统指标失败: %w", err)
	}
	report.Ping = a.carrier.Snapshot()

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	url := a.cfg.Server.Endpoint + "/api/agent/report"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TokenHeader, a.cfg.Server.Token)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("服务端返回 %d: %s", resp.StatusCode, string(body))
	}

	slog.Debug("上报成功", "timestamp", *report.Timestamp)
	return nil
}

// fetchInterval 向服务端查询上报间隔，失败时使用兜底值
func (a *Agent) fetchInterval(ctx context.Context) int {
	url := a.cfg.Server.Endpoint + "/api/agent/interval"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return DefaultReportInterval
	}
	req.Header.Set(TokenHeader, a.cfg.Server.Token)

	resp, err := a.client.Do(req)
	if err != nil {
		return DefaultReportInterval
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DefaultReportInterval
	}

	var result protocol.IntervalResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Interval <= 0 {
		return DefaultReportInterval
	}
	return result.Interval
}
