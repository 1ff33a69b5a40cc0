package repo

import (
	"context"

	"github.com/dushixiang/swallow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MetricRepo 指标快照数据访问层
type MetricRepo struct {
	db *gorm.DB
}

func NewMetricRepo(db *gorm.DB) *MetricRepo {
	return &MetricRepo{
		db: db,
	}
}

// SaveSnapshot 保存探针指标快照（按 agent 覆盖，避免先删后插的空窗）
func (r *MetricRepo) SaveSnapshot(ctx context.Context, snapshot *models.MetricSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "agent_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"timestamp",
				"cpu_usage_percent", "load1", "load5", "load15",
				"memory_total", "memory_used", "memory_free", "memory_usage_percent",
				"disk_total", "disk_used", "disk_free", "disk_usage_percent",
				"network_upload_speed", "network_download_speed",
				"network_total_upload", "network_total_download",
				"uptime", "ping_loss",
			}),
		}).
		Create(snapshot).Error
}

// FindByAgentId 查询探针的最新快照
func (r *MetricRepo) FindByAgentId(ctx context.Context, agentID string) (models.MetricSnapshot, error) {
	var snapshot models.MetricSnapshot
	err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&snapshot).Error
	return snapshot, err
}

// DeleteByAgentId 删除指定探针的快照数据
func (r *MetricRepo) DeleteByAgentId(ctx context.Context, agentID string) error {
	if err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Delete(&models.MetricSnapshot{}).Error; err != nil {
		return err
	}
	return nil
}
