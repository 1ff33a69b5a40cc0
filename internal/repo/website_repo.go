package repo

import (
	"context"
	"errors"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// createRetries 主键冲突时的重试次数上限
const createRetries = 3

// WebsiteRepo 网站数据访问层
type WebsiteRepo struct {
	db *gorm.DB
}

func NewWebsiteRepo(db *gorm.DB) *WebsiteRepo {
	return &WebsiteRepo{db: db}
}

// Create 创建网站，主键由唯一约束兜底，冲突时重新生成 ID 有限重试
func (r *WebsiteRepo) Create(ctx context.Context, website *models.Website) error {
	var err error
	for i := 0; i < createRetries; i++ {
		if website.ID == "" || i > 0 {
			website.ID = uuid.NewString()
		}
		err = r.db.WithContext(ctx).Create(website).Error
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

func (r *WebsiteRepo) FindById(ctx context.Context, id string) (models.Website, error) {
	var website models.Website
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&website).Error
	return website, err
}

// FindAll 返回全部网站，按创建时间升序
func (r *WebsiteRepo) FindAll(ctx context.Context) ([]models.Website, error) {
	var websites []models.Website
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&websites).Error
	return websites, err
}

// UpdateStatusFields 持久化检测结果相关字段
// updates 中的 last_notified_down_at 允许为 nil（写入 NULL）
func (r *WebsiteRepo) UpdateStatusFields(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Website{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *WebsiteRepo) DeleteById(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Website{}).Error
}
