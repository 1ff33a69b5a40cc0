package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/repo"
	"github.com/go-orz/cache"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	propertyTelegramConfig = "telegram_config"
	propertyMailConfig     = "mail_config"
	propertyReportInterval = "report_interval"
)

// DefaultReportInterval 探针默认上报间隔（秒）
const DefaultReportInterval = 60

// PropertyService 全局配置服务
type PropertyService struct {
	logger *zap.Logger
	*orz.Service
	propertyRepo *repo.PropertyRepo

	// 配置缓存，避免每次告警/上报都查库
	configCache cache.Cache[string, string]
}

func NewPropertyService(logger *zap.Logger, db *gorm.DB) *PropertyService {
	return &PropertyService{
		logger:       logger,
		Service:      orz.NewService(db),
		propertyRepo: repo.NewPropertyRepo(db),
		configCache:  cache.New[string, string](time.Minute),
	}
}

func (s *PropertyService) get(ctx context.Context, name string) (string, bool, error) {
	if value, ok := s.configCache.Get(name); ok {
		return value, true, nil
	}
	value, err := s.propertyRepo.Get(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	s.configCache.Set(name, value, time.Minute)
	return value, true, nil
}

func (s *PropertyService) set(ctx context.Context, name, value string) error {
	if err := s.propertyRepo.Set(ctx, name, value); err != nil {
		return err
	}
	s.configCache.Set(name, value, time.Minute)
	return nil
}

// GetReportInterval 读取探针上报间隔（秒），未配置时返回默认值
func (s *PropertyService) GetReportInterval(ctx context.Context) int {
	value, ok, err := s.get(ctx, propertyReportInterval)
	if err != nil {
		s.logger.Error("读取上报间隔失败", zap.Error(err))
		return DefaultReportInterval
	}
	if !ok {
		return DefaultReportInterval
	}
	var interval int
	if _, err := fmt.Sscanf(value, "%d", &interval); err != nil || interval <= 0 {
		return DefaultReportInterval
	}
	return interval
}

// SetReportInterval 更新探针上报间隔（秒）
func (s *PropertyService) SetReportInterval(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("上报间隔必须大于0: %d", seconds)
	}
	return s.set(ctx, propertyReportInterval, fmt.Sprintf("%d", seconds))
}

// GetTelegramConfig 读取 Telegram 通知渠道配置，未配置视为禁用
func (s *PropertyService) GetTelegramConfig(ctx context.Context) (*models.TelegramConfig, error) {
	value, ok, err := s.get(ctx, propertyTelegramConfig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.TelegramConfig{Enabled: false}, nil
	}
	var config models.TelegramConfig
	if err := json.Unmarshal([]byte(value), &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SetTelegramConfig 更新 Telegram 通知渠道配置
func (s *PropertyService) SetTelegramConfig(ctx context.Context, config *models.TelegramConfig) error {
	value, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return s.set(ctx, propertyTelegramConfig, string(value))
}

// GetMailConfig 读取邮件通知渠道配置，未配置视为禁用
func (s *PropertyService) GetMailConfig(ctx context.Context) (*models.MailConfig, error) {
	value, ok, err := s.get(ctx, propertyMailConfig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.MailConfig{Enabled: false}, nil
	}
	var config models.MailConfig
	if err := json.Unmarshal([]byte(value), &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SetMailConfig 更新邮件通知渠道配置
func (s *PropertyService) SetMailConfig(ctx context.Context, config *models.MailConfig) error {
	value, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return s.set(ctx, propertyMailConfig, string(value))
}
