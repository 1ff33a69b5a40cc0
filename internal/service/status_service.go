package service

import (
	"context"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/repo"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sender 通知发送入口，实现方自行保证尽力而为语义
type Sender interface {
	Send(ctx context.Context, message string)
}

// StatusService 状态转移与通知引擎
type StatusService struct {
	logger *zap.Logger
	*orz.Service
	websiteRepo *repo.WebsiteRepo
	eventRepo   *repo.StatusEventRepo
	notifier    Sender

	locks keyedMutex
}

func NewStatusService(logger *zap.Logger, db *gorm.DB, notifier Sender) *StatusService {
	return &StatusService{
		logger:      logger,
		Service:     orz.NewService(db),
		websiteRepo: repo.NewWebsiteRepo(db),
		eventRepo:   repo.NewStatusEventRepo(db),
		notifier:    notifier,
	}
}

// ApplyCheckResult 应用一次检测结果
// 无论是否通知，都持久化状态字段并追加一条检测事件；
// 通知判定基于锁内重读的持久化状态，同一网站的并发评估被串行化。
func (s *StatusService) ApplyCheckResult(ctx context.Context, websiteID string, result CheckResult, now time.Time) error {
	unlock := s.locks.Lock(websiteID)
	defer unlock()

	website, err := s.websiteRepo.FindById(ctx, websiteID)
	if err != nil {
		return err
	}

	nowMillis := now.UnixMilli()
	action := decideNotify(website.LastStatus, result.Status, website.LastNotifiedDownAt, nowMillis)

	updates := map[string]interface{}{
		"last_status":        result.Status,
		"last_status_code":   result.StatusCode,
		"last_response_time": result.ResponseTime,
		"last_checked_at":    nowMillis,
	}
	switch action {
	case notifyDown:
		updates["last_notified_down_at"] = nowMillis
	case notifyRecovered:
		updates["last_notified_down_at"] = nil
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.websiteRepo.UpdateStatusFields(ctx, websiteID, updates); err != nil {
			return err
		}
		event := &models.StatusEvent{
			WebsiteID:    websiteID,
			Timestamp:    nowMillis,
			Status:       result.Status,
			StatusCode:   result.StatusCode,
			ResponseTime: result.ResponseTime,
		}
		return s.eventRepo.Create(ctx, event)
	})
	if err != nil {
		return err
	}

	switch action {
	case notifyDown:
		s.logger.Info("触发网站故障通知",
			zap.String("websiteId", website.ID),
			zap.String("name", website.Name),
			zap.String("status", string(result.Status)),
			zap.Int("statusCode", result.StatusCode))
		s.notifier.Send(ctx, buildWebsiteDownMessage(&website, result))
	case notifyRecovered:
		s.logger.Info("网站恢复",
			zap.String("websiteId", website.ID),
			zap.String("name", website.Name))
		s.notifier.Send(ctx, buildWebsiteRecoveredMessage(&website, result))
	}

	return nil
}
