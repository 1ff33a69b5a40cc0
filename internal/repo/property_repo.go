package repo

import (
	"context"

	"github.com/dushixiang/swallow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PropertyRepo 全局配置数据访问层
type PropertyRepo struct {
	db *gorm.DB
}

func NewPropertyRepo(db *gorm.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

// Get 读取配置项，不存在时返回 gorm.ErrRecordNotFound
func (r *PropertyRepo) Get(ctx context.Context, name string) (string, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&property).Error
	if err != nil {
		return "", err
	}
	return property.Value, nil
}

// Set 写入配置项（存在则覆盖）
func (r *PropertyRepo) Set(ctx context.Context, name, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models.Property{Name: name, Value: value}).Error
}
