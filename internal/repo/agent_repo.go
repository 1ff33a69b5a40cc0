package repo

import (
	"context"
	"errors"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentRepo 探针数据访问层
type AgentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) *AgentRepo {
	return &AgentRepo{db: db}
}

// Create 创建探针，ID/Token 冲突时重新生成并有限重试
func (r *AgentRepo) Create(ctx context.Context, agent *models.Agent) error {
	var err error
	for i := 0; i < createRetries; i++ {
		if agent.ID == "" || i > 0 {
			agent.ID = uuid.NewString()
		}
		if agent.Token == "" || i > 0 {
			agent.Token = uuid.NewString()
		}
		err = r.db.WithContext(ctx).Create(agent).Error
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

func (r *AgentRepo) FindById(ctx context.Context, id string) (models.Agent, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error
	return agent, err
}

// FindByToken 根据上报凭证查找探针
func (r *AgentRepo) FindByToken(ctx context.Context, token string) (models.Agent, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&agent).Error
	return agent, err
}

// FindAll 返回全部探针，按权重降序
func (r *AgentRepo) FindAll(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	err := r.db.WithContext(ctx).Order("weight DESC").Find(&agents).Error
	return agents, err
}

// UpdateNotifiedDownAt 更新最后离线通知时间，ts 为 nil 时写入 NULL
func (r *AgentRepo) UpdateNotifiedDownAt(ctx context.Context, id string, ts *int64) error {
	return r.db.WithContext(ctx).Model(&models.Agent{}).
		Where("id = ?", id).
		Update("last_notified_down_at", ts).Error
}

func (r *AgentRepo) DeleteById(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Agent{}).Error
}
