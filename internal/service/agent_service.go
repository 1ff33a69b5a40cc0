package service

import (
	"context"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/repo"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AgentService 探针管理
type AgentService struct {
	logger *zap.Logger
	*orz.Service
	agentRepo  *repo.AgentRepo
	metricRepo *repo.MetricRepo
}

func NewAgentService(logger *zap.Logger, db *gorm.DB) *AgentService {
	return &AgentService{
		logger:     logger,
		Service:    orz.NewService(db),
		agentRepo:  repo.NewAgentRepo(db),
		metricRepo: repo.NewMetricRepo(db),
	}
}

// Create 创建探针，上报凭证随机生成
func (s *AgentService) Create(ctx context.Context, name string, weight int) (*models.Agent, error) {
	agent := &models.Agent{
		Name:   name,
		Weight: weight,
	}
	if err := s.agentRepo.Create(ctx, agent); err != nil {
		return nil, err
	}
	s.logger.Info("创建探针", zap.String("id", agent.ID), zap.String("name", name))
	return agent, nil
}

func (s *AgentService) FindById(ctx context.Context, id string) (models.Agent, error) {
	return s.agentRepo.FindById(ctx, id)
}

// FindByToken 根据上报凭证查找探针，用于上报接口鉴权
func (s *AgentService) FindByToken(ctx context.Context, token string) (models.Agent, error) {
	return s.agentRepo.FindByToken(ctx, token)
}

func (s *AgentService) FindAll(ctx context.Context) ([]models.Agent, error) {
	return s.agentRepo.FindAll(ctx)
}

// DeleteById 删除探针及其指标快照
func (s *AgentService) DeleteById(ctx context.Context, id string) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.metricRepo.DeleteByAgentId(ctx, id); err != nil {
			return err
		}
		return s.agentRepo.DeleteById(ctx, id)
	})
}
