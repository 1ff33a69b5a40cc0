package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dushixiang/swallow/internal/config"
	"github.com/dushixiang/swallow/internal/handler"
	"github.com/dushixiang/swallow/internal/migrate"
	"github.com/dushixiang/swallow/internal/scheduler"
	"github.com/dushixiang/swallow/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "swallow",
		Short: "网站可用性与主机探针监控服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, goerrors.Wrap(err, 0).ErrorStack())
		os.Exit(1)
	}
}

func run(configPath string) error {
	appConfig, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := config.NewLogger(appConfig.Log)
	defer logger.Sync()

	db, err := config.OpenDatabase(appConfig.Database)
	if err != nil {
		logger.Error("打开数据库失败", zap.Error(err))
		return err
	}

	if err := migrate.Migrate(logger, db); err != nil {
		return err
	}
	if err := migrate.Verify(db); err != nil {
		return err
	}

	// 服务装配
	propertyService := service.NewPropertyService(logger, db)
	notifier := service.NewNotifier(logger, propertyService)
	websiteService := service.NewWebsiteService(logger, db)
	agentService := service.NewAgentService(logger, db)
	metricService := service.NewMetricService(logger, db)
	statusService := service.NewStatusService(logger, db, notifier)
	watchdogService := service.NewWatchdogService(logger, db, notifier)
	checker := service.NewChecker()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probeScheduler := scheduler.NewProbeScheduler(logger, websiteService, checker, statusService, watchdogService)
	if err := probeScheduler.Start(ctx, appConfig.Check.Interval); err != nil {
		return err
	}
	defer probeScheduler.Stop()

	// HTTP 服务
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	agentHandler := handler.NewAgentHandler(logger, agentService, metricService, propertyService)
	websiteHandler := handler.NewWebsiteHandler(logger, websiteService)
	propertyHandler := handler.NewPropertyHandler(logger, propertyService)
	handler.RegisterRoutes(e, agentHandler, websiteHandler, propertyHandler)

	go func() {
		logger.Info("启动HTTP服务", zap.String("addr", appConfig.Server.Addr))
		if err := e.Start(appConfig.Server.Addr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP服务异常退出", zap.Error(err))
			cancel()
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("开始关闭服务")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭HTTP服务失败", zap.Error(err))
	}

	return nil
}
