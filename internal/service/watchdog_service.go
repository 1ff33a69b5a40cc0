package service

import (
	"context"
	"errors"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StaleThreshold 超过该时长未收到上报即视为探针失联
const StaleThreshold = 5 * time.Minute

// WatchdogService 探针失联巡检
// 探针没有持久化的状态字段，失联与否由最新快照的时间推导，
// 通知判定复用引擎的冷却规则，只落在 lastNotifiedDownAt 上。
type WatchdogService struct {
	logger     *zap.Logger
	agentRepo  *repo.AgentRepo
	metricRepo *repo.MetricRepo
	notifier   Sender

	locks keyedMutex
}

func NewWatchdogService(logger *zap.Logger, db *gorm.DB, notifier Sender) *WatchdogService {
	return &WatchdogService{
		logger:     logger,
		agentRepo:  repo.NewAgentRepo(db),
		metricRepo: repo.NewMetricRepo(db),
		notifier:   notifier,
	}
}

// CheckAgents 对全部探针执行一次失联巡检（顺序执行）
// 单个探针的巡检失败不影响其余探针。
func (s *WatchdogService) CheckAgents(ctx context.Context, now time.Time) error {
	agents, err := s.agentRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	for i := range agents {
		if err := s.checkAgent(ctx, agents[i].ID, now); err != nil {
			s.logger.Error("探针失联巡检失败",
				zap.String("agentId", agents[i].ID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *WatchdogService) checkAgent(ctx context.Context, agentID string, now time.Time) error {
	unlock := s.locks.Lock(agentID)
	defer unlock()

	agent, err := s.agentRepo.FindById(ctx, agentID)
	if err != nil {
		return err
	}

	// 从未上报或最新快照超过阈值都视为失联
	stale := true
	var silentFor time.Duration
	snapshot, err := s.metricRepo.FindByAgentId(ctx, agentID)
	if err == nil {
		silentFor = time.Duration(now.UnixMilli()-snapshot.Timestamp) * time.Millisecond
		stale = silentFor > StaleThreshold
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// 上一状态类由通知时间戳推导：非空即"当前故障已通知"
	prev := models.StatusUp
	if agent.LastNotifiedDownAt != nil {
		prev = models.StatusDown
	}
	next := models.StatusUp
	if stale {
		next = models.StatusDown
	}

	switch decideNotify(prev, next, agent.LastNotifiedDownAt, now.UnixMilli()) {
	case notifyDown:
		ts := now.UnixMilli()
		if err := s.agentRepo.UpdateNotifiedDownAt(ctx, agentID, &ts); err != nil {
			return err
		}
		s.logger.Info("触发探针失联通知",
			zap.String("agentId", agent.ID),
			zap.String("name", agent.Name),
			zap.Duration("silentFor", silentFor))
		s.notifier.Send(ctx, buildAgentDownMessage(&agent, silentFor))
	case notifyRecovered:
		if err := s.agentRepo.UpdateNotifiedDownAt(ctx, agentID, nil); err != nil {
			return err
		}
		s.logger.Info("探针恢复上报",
			zap.String("agentId", agent.ID),
			zap.String("name", agent.Name))
		s.notifier.Send(ctx, buildAgentRecoveredMessage(&agent))
	}

	return nil
}
