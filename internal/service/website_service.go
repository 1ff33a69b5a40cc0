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

// EventRetention 状态事件的查询窗口
const EventRetention = 24 * time.Hour

// WebsiteService 网站管理
type WebsiteService struct {
	logger *zap.Logger
	*orz.Service
	websiteRepo *repo.WebsiteRepo
	eventRepo   *repo.StatusEventRepo
}

func NewWebsiteService(logger *zap.Logger, db *gorm.DB) *WebsiteService {
	return &WebsiteService{
		logger:      logger,
		Service:     orz.NewService(db),
		websiteRepo: repo.NewWebsiteRepo(db),
		eventRepo:   repo.NewStatusEventRepo(db),
	}
}

func (s *WebsiteService) Create(ctx context.Context, name, url string) (*models.Website, error) {
	website := &models.Website{
		Name: name,
		URL:  url,
	}
	if err := s.websiteRepo.Create(ctx, website); err != nil {
		return nil, err
	}
	s.logger.Info("创建网站", zap.String("id", website.ID), zap.String("url", url))
	return website, nil
}

func (s *WebsiteService) FindById(ctx context.Context, id string) (models.Website, error) {
	return s.websiteRepo.FindById(ctx, id)
}

// FindAllWebsites 返回全部网站，供调度器每轮加载
func (s *WebsiteService) FindAllWebsites(ctx context.Context) ([]models.Website, error) {
	return s.websiteRepo.FindAll(ctx)
}

// FindRecentEvents 查询最近24小时的检测事件，最新在前
func (s *WebsiteService) FindRecentEvents(ctx context.Context, websiteID string, now time.Time) ([]models.StatusEvent, error) {
	since := now.Add(-EventRetention).UnixMilli()
	return s.eventRepo.FindByWebsiteSince(ctx, websiteID, since)
}

// DeleteById 删除网站及其全部事件
func (s *WebsiteService) DeleteById(ctx context.Context, id string) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.DeleteByWebsiteId(ctx, id); err != nil {
			return err
		}
		return s.websiteRepo.DeleteById(ctx, id)
	})
}
