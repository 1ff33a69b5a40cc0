package config

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config 探针配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Routes []Route      `yaml:"routes"` // 线路质量探测目标

	// Path 配置文件路径，服务安装时透传给 run 命令
	Path string `yaml:"-"`
}

// ServerConfig 服务端连接配置
type ServerConfig struct {
	Endpoint string `yaml:"endpoint"` // 服务端地址，例如 http://127.0.0.1:8000
	Token    string `yaml:"token"`    // 上报凭证
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

// Route 线路质量探测目标
type Route struct {
	Key      string `yaml:"key"`      // 线路标识，例如 ct/cu/cm
	Target   string `yaml:"target"`   // 探测目标，tcp 模式为 host:port，icmp 模式为主机名
	Protocol string `yaml:"protocol"` // tcp（默认）或 icmp
}

// DefaultRoutes 默认探测三大运营商线路
func DefaultRoutes() []Route {
	return []Route{
		{Key: "ct", Target: "www.189.cn:80", Protocol: "tcp"},
		{Key: "cu", Target: "www.10010.com:80", Protocol: "tcp"},
		{Key: "cm", Target: "www.10086.cn:80", Protocol: "tcp"},
	}
}

// Load 从文件加载配置
// fs 允许注入内存文件系统，便于测试
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := &Config{
		Log: LogConfig{Level: "info", MaxSize: 50, MaxBackups: 3, MaxAge: 30},
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	config.Path = path

	if config.Server.Endpoint == "" {
		return nil, fmt.Errorf("配置缺少服务端地址")
	}
	if config.Server.Token == "" {
		return nil, fmt.Errorf("配置缺少上报凭证")
	}
	if len(config.Routes) == 0 {
		config.Routes = DefaultRoutes()
	}
	for i := range config.Routes {
		if config.Routes[i].Protocol == "" {
			config.Routes[i].Protocol = "tcp"
		}
	}
	return config, nil
}
