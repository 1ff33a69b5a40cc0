package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dushixiang/swallow/pkg/agent/config"
	"github.com/dushixiang/swallow/pkg/agent/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "swallow-agent",
		Short: "Swallow 监控探针",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "swallow-agent.yaml", "配置文件路径")

	newManager := func() (*service.ServiceManager, error) {
		cfg, err := config.Load(afero.NewOsFs(), configPath)
		if err != nil {
			return nil, err
		}
		return service.NewServiceManager(cfg)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "前台运行探针",
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := newManager()
				if err != nil {
					return err
				}
				return mgr.Run()
			},
		},
		&cobra.Command{
			Use:   "install",
			Short: "安装为系统服务",
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := newManager()
				if err != nil {
					return err
				}
				if err := mgr.Install(); err != nil {
					return err
				}
				fmt.Println("服务安装成功")
				return nil
			},
		},
		&cobra.Command{
			Use:   "uninstall",
			Short: "卸载系统服务",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := service.UninstallAgent(configPath); err != nil {
					return err
				}
				fmt.Println("服务卸载成功")
				return nil
			},
		},
		&cobra.Command{
			Use:   "start",
			Short: "启动服务",
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := newManager()
				if err != nil {
					return err
				}
				return mgr.Start()
			},
		},
		&cobra.Command{
			Use:   "stop",
			Short: "停止服务",
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := newManager()
				if err != nil {
					return err
				}
				return mgr.Stop()
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "查看服务状态",
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := newManager()
				if err != nil {
					return err
				}
				status, err := mgr.Status()
				if err != nil {
					return err
				}
				fmt.Println(status)
				return nil
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
