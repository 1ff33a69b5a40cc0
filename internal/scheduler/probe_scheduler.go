package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// batchSize 单个批次内的最大并发检测数
const batchSize = 10

// WebsiteChecker 检测单个网站的可达性
type WebsiteChecker interface {
	Check(ctx context.Context, rawURL string) service.CheckResult
}

// ResultApplier 将检测结果应用到状态引擎
type ResultApplier interface {
	ApplyCheckResult(ctx context.Context, websiteID string, result service.CheckResult, now time.Time) error
}

// AgentWatchdog 探针失联巡检入口
type AgentWatchdog interface {
	CheckAgents(ctx context.Context, now time.Time) error
}

// WebsiteLister 提供待检测的网站列表
type WebsiteLister interface {
	FindAllWebsites(ctx context.Context) ([]models.Website, error)
}

// ProbeScheduler 探测调度器
// 每轮先分批检测全部网站，再执行一次探针失联巡检。
// 上一轮尚未结束时直接跳过本轮，避免重叠执行。
type ProbeScheduler struct {
	logger   *zap.Logger
	cron     *cron.Cron
	lister   WebsiteLister
	checker  WebsiteChecker
	applier  ResultApplier
	watchdog AgentWatchdog

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewProbeScheduler(logger *zap.Logger, lister WebsiteLister, checker WebsiteChecker, applier ResultApplier, watchdog AgentWatchdog) *ProbeScheduler {
	return &ProbeScheduler{
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()), // 支持秒级调度
		lister:   lister,
		checker:  checker,
		applier:  applier,
		watchdog: watchdog,
	}
}

// Start 启动调度器，interval 为探测周期（秒）
func (s *ProbeScheduler) Start(ctx context.Context, interval int) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if interval <= 0 {
		interval = 60 // 默认 60 秒
	}
	spec := fmt.Sprintf("@every %ds", interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if !s.running.CompareAndSwap(false, true) {
			s.logger.Warn("上一轮探测尚未结束，跳过本轮")
			return
		}
		defer s.running.Store(false)

		s.RunOnce(s.ctx, time.Now())
	}); err != nil {
		return fmt.Errorf("添加探测任务失败: %w", err)
	}

	s.logger.Info("启动探测调度器", zap.Int("interval", interval))
	s.cron.Start()
	return nil
}

// Stop 停止调度器，等待执行中的任务结束
func (s *ProbeScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("探测调度器已停止")
}

// RunOnce 执行一轮完整的探测
// 网站按批次并发检测，批内任意 panic 不影响同批其余网站；
// 全部网站检测完成后再执行探针失联巡检。
func (s *ProbeScheduler) RunOnce(ctx context.Context, now time.Time) {
	websites, err := s.lister.FindAllWebsites(ctx)
	if err != nil {
		s.logger.Error("加载网站列表失败", zap.Error(err))
	} else {
		for start := 0; start < len(websites); start += batchSize {
			end := start + batchSize
			if end > len(websites) {
				end = len(websites)
			}
			s.runBatch(ctx, websites[start:end], now)
		}
	}

	if err := s.watchdog.CheckAgents(ctx, now); err != nil {
		s.logger.Error("探针失联巡检失败", zap.Error(err))
	}
}

func (s *ProbeScheduler) runBatch(ctx context.Context, websites []models.Website, now time.Time) {
	var wg conc.WaitGroup
	for i := range websites {
		website := websites[i]
		wg.Go(func() {
			result := s.checker.Check(ctx, website.URL)
			if err := s.applier.ApplyCheckResult(ctx, website.ID, result, now); err != nil {
				s.logger.Error("应用检测结果失败",
					zap.String("websiteId", website.ID),
					zap.String("name", website.Name),
					zap.Error(err))
			}
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.Error("网站检测发生panic", zap.Any("panic", recovered.Value))
	}
}
