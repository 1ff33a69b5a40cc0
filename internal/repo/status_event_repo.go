package repo

import (
	"context"

	"github.com/dushixiang/swallow/internal/models"
	"gorm.io/gorm"
)

// StatusEventRepo 检测事件数据访问层（仅追加）
type StatusEventRepo struct {
	db *gorm.DB
}

func NewStatusEventRepo(db *gorm.DB) *StatusEventRepo {
	return &StatusEventRepo{db: db}
}

// Create 追加一条检测事件
func (r *StatusEventRepo) Create(ctx context.Context, event *models.StatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByWebsiteSince 查询某网站指定时间之后的事件，按时间倒序
func (r *StatusEventRepo) FindByWebsiteSince(ctx context.Context, websiteID string, since int64) ([]models.StatusEvent, error) {
	var events []models.StatusEvent
	err := r.db.WithContext(ctx).
		Where("website_id = ? AND timestamp >= ?", websiteID, since).
		Order("timestamp DESC").
		Find(&events).Error
	return events, err
}

// DeleteByWebsiteId 删除某网站的全部事件
func (r *StatusEventRepo) DeleteByWebsiteId(ctx context.Context, websiteID string) error {
	return r.db.WithContext(ctx).
		Where("website_id = ?", websiteID).
		Delete(&models.StatusEvent{}).Error
}

// CountByWebsite 统计某网站的事件数量
func (r *StatusEventRepo) CountByWebsite(ctx context.Context, websiteID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StatusEvent{}).
		Where("website_id = ?", websiteID).
		Count(&count).Error
	return count, err
}
