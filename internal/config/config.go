package config

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Check    CheckConfig    `yaml:"check"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr string `yaml:"addr"` // 监听地址，默认 :8000
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite 或 postgres
	DSN  string `yaml:"dsn"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // debug/info/warn/error
	File       string `yaml:"file"`       // 为空时输出到标准输出
	MaxSize    int    `yaml:"maxSize"`    // 单文件大小上限(MB)
	MaxBackups int    `yaml:"maxBackups"` // 保留文件数
	MaxAge     int    `yaml:"maxAge"`     // 保留天数
	Compress   bool   `yaml:"compress"`
}

// CheckConfig 探测配置
type CheckConfig struct {
	Interval int `yaml:"interval"` // 探测周期(秒)，默认 60
}

// Load 从文件加载配置，缺省值自动补全
func Load(path string) (*AppConfig, error) {
	config := &AppConfig{
		Server:   ServerConfig{Addr: ":8000"},
		Database: DatabaseConfig{Type: "sqlite", DSN: "swallow.db"},
		Log:      LogConfig{Level: "info", MaxSize: 100, MaxBackups: 3, MaxAge: 30},
		Check:    CheckConfig{Interval: 60},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if config.Check.Interval <= 0 {
		config.Check.Interval = 60
	}
	return config, nil
}

// NewLogger 创建日志器，配置了文件路径时按大小滚动
func NewLogger(config LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(config.Level); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	var writer zapcore.WriteSyncer
	if config.File != "" {
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
	} else {
		writer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writer, level)
	return zap.New(core, zap.AddCaller())
}

// OpenDatabase 打开数据库连接
// TranslateError 使驱动层的唯一约束冲突统一转换为 gorm.ErrDuplicatedKey
func OpenDatabase(config DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}

	switch config.Type {
	case "postgres":
		return gorm.Open(postgres.Open(config.DSN), gormConfig)
	case "sqlite", "":
		return gorm.Open(sqlite.Open(config.DSN), gormConfig)
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", config.Type)
	}
}
