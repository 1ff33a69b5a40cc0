package service

import (
	"context"
	"errors"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/protocol"
	"github.com/dushixiang/swallow/internal/repo"
	"github.com/go-orz/cache"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MetricService 指标上报服务
type MetricService struct {
	logger     *zap.Logger
	metricRepo *repo.MetricRepo

	latestCache cache.Cache[string, *models.MetricSnapshot]
}

func NewMetricService(logger *zap.Logger, db *gorm.DB) *MetricService {
	return &MetricService{
		logger:      logger,
		metricRepo:  repo.NewMetricRepo(db),
		latestCache: cache.New[string, *models.MetricSnapshot](time.Minute),
	}
}

// Ingest 处理一次指标上报：覆盖写入探针的最新快照
// 重复提交同一份上报不会产生新行（幂等，upsert 语义）。
// 请求体的完整性校验由接入层完成，这里假定必填字段已存在。
func (s *MetricService) Ingest(ctx context.Context, agentID string, report *protocol.MetricReport) error {
	snapshot := &models.MetricSnapshot{
		AgentID:   agentID,
		Timestamp: *report.Timestamp,

		CPUUsagePercent: report.CPU.UsagePercent,

		MemoryTotal:        report.Memory.Total,
		MemoryUsed:         report.Memory.Used,
		MemoryFree:         report.Memory.Free,
		MemoryUsagePercent: report.Memory.UsagePercent,

		DiskTotal:        report.Disk.Total,
		DiskUsed:         report.Disk.Used,
		DiskFree:         report.Disk.Free,
		DiskUsagePercent: report.Disk.UsagePercent,

		NetworkUploadSpeed:   report.Network.UploadSpeed,
		NetworkDownloadSpeed: report.Network.DownloadSpeed,
		NetworkTotalUpload:   report.Network.TotalUpload,
		NetworkTotalDownload: report.Network.TotalDownload,

		Uptime: *report.Uptime,
	}

	if len(report.CPU.LoadAvg) >= 3 {
		snapshot.Load1 = report.CPU.LoadAvg[0]
		snapshot.Load5 = report.CPU.LoadAvg[1]
		snapshot.Load15 = report.CPU.LoadAvg[2]
	}

	// ping 缺省为空 map
	ping := report.Ping
	if ping == nil {
		ping = map[string]int{}
	}
	snapshot.PingLoss = datatypes.NewJSONType(ping)

	if err := s.metricRepo.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("保存指标快照失败",
			zap.String("agentId", agentID),
			zap.Error(err))
		return err
	}

	s.latestCache.Set(agentID, snapshot, time.Hour)
	return nil
}

// GetLatest 查询探针最新快照，从未上报时返回 nil
func (s *MetricService) GetLatest(ctx context.Context, agentID string) (*models.MetricSnapshot, error) {
	if snapshot, ok := s.latestCache.Get(agentID); ok {
		return snapshot, nil
	}

	snapshot, err := s.metricRepo.FindByAgentId(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.latestCache.Set(agentID, &snapshot, time.Minute)
	return &snapshot, nil
}

// DeleteAgentMetrics 删除探针的快照数据
func (s *MetricService) DeleteAgentMetrics(ctx context.Context, agentID string) error {
	s.latestCache.Delete(agentID)
	return s.metricRepo.DeleteByAgentId(ctx, agentID)
}
