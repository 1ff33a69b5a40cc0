package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dushixiang/swallow/pkg/agent"
	"github.com/dushixiang/swallow/pkg/agent/config"
	"github.com/kardianos/service"
	"github.com/spf13/afero"
)

// program 实现 service.Interface
type program struct {
	cfg    *config.Config
	ctx    context.Context
	cancel context.CancelFunc
}

// startAgent 在后台启动探针
func startAgent(ctx context.Context, cfg *config.Config) {
	a := agent.New(cfg)
	go func() {
		if err := a.Start(ctx); err != nil {
			slog.Warn("探针运行出错", "error", err)
		}
	}()
}

// Start 启动服务
func (p *program) Start(s service.Service) error {
	agent.InitLogger(p.cfg.Log)
	slog.Info("Swallow Agent 服务启动中...")

	p.ctx, p.cancel = context.WithCancel(context.Background())
	startAgent(p.ctx, p.cfg)
	return nil
}

// Stop 停止服务
func (p *program) Stop(s service.Service) error {
	slog.Info("Swallow Agent 服务停止中...")
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// ServiceManager 服务管理器
type ServiceManager struct {
	cfg     *config.Config
	service service.Service
}

// NewServiceManager 创建服务管理器
func NewServiceManager(cfg *config.Config) (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("获取可执行文件路径失败: %w", err)
	}

	svcConfig := &service.Config{
		Name:        "swallow-agent",
		DisplayName: "Swallow Agent",
		Description: "Swallow 监控探针 - 采集系统指标与线路质量并上报到服务端",
		Arguments:   []string{"run", "--config", cfg.Path},
		Executable:  execPath,
		Option: service.KeyValue{
			// Linux systemd 配置
			"Restart":            "always",
			"RestartSec":         "10",
			"StartLimitInterval": "0",
			"KillMode":           "process",

			// Windows 配置
			"OnFailure":    "restart",
			"ResetPeriod":  86400,
			"RestartDelay": 10000,

			// 其他 Unix 系统 (upstart/launchd)
			"KeepAlive": true,
			"RunAtLoad": true,
		},
	}

	s, err := service.New(&program{cfg: cfg}, svcConfig)
	if err != nil {
		return nil, fmt.Errorf("创建服务失败: %w", err)
	}

	return &ServiceManager{
		cfg:     cfg,
		service: s,
	}, nil
}

// Install 安装服务
func (m *ServiceManager) Install() error {
	return m.service.Install()
}

// Uninstall 卸载服务
func (m *ServiceManager) Uninstall() error {
	_ = m.service.Stop()
	return m.service.Uninstall()
}

// Start 启动服务
func (m *ServiceManager) Start() error {
	return m.service.Start()
}

// Stop 停止服务
func (m *ServiceManager) Stop() error {
	return m.service.Stop()
}

// Restart 重启服务
func (m *ServiceManager) Restart() error {
	return m.service.Restart()
}

// Status 查看服务状态
func (m *ServiceManager) Status() (string, error) {
	status, err := m.service.Status()
	if err != nil {
		return "", err
	}

	switch status {
	case service.StatusRunning:
		return "运行中 (Running)", nil
	case service.StatusStopped:
		return "已停止 (Stopped)", nil
	case service.StatusUnknown:
		return "未知 (Unknown)", nil
	default:
		return fmt.Sprintf("状态: %d", status), nil
	}
}

// Run 运行服务（用于 run 命令）
func (m *ServiceManager) Run() error {
	// 服务管理器控制下运行
	if !service.Interactive() {
		return m.service.Run()
	}

	// 交互模式（前台运行）
	agent.InitLogger(m.cfg.Log)
	slog.Info("配置加载成功",
		"endpoint", m.cfg.Server.Endpoint,
		"routes", len(m.cfg.Routes))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	startAgent(ctx, m.cfg)

	<-interrupt
	slog.Info("收到中断信号，正在关闭...")
	cancel()
	return nil
}

// UninstallAgent 执行探针卸载操作
func UninstallAgent(cfgPath string) error {
	cfg, err := config.Load(afero.NewOsFs(), cfgPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	mgr, err := NewServiceManager(cfg)
	if err != nil {
		return fmt.Errorf("创建服务管理器失败: %w", err)
	}

	status, err := mgr.Status()
	if err != nil {
		slog.Warn("获取服务状态失败", "error", err)
	} else if status != "已停止 (Stopped)" {
		if err := mgr.Stop(); err != nil {
			return fmt.Errorf("停止服务失败: %w", err)
		}
	}

	if err := mgr.Uninstall(); err != nil {
		return fmt.Errorf("卸载服务失败: %w", err)
	}

	if err := os.Remove(cfgPath); err != nil {
		slog.Warn("删除配置文件失败", "error", err)
	}
	return nil
}
