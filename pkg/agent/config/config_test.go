package config

import (
	"testing"

	"github.com/spf13/afero"
)

func writeConfig(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "agent.yaml", `
server:
  endpoint: http://127.0.0.1:8000
  token: test-token
`)

	cfg, err := Load(fs, "agent.yaml")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Server.Endpoint != "http://127.0.0.1:8000" {
		t.Errorf("endpoint = %s", cfg.Server.Endpoint)
	}
	// 未配置线路时使用默认三大运营商
	if len(cfg.Routes) != 3 {
		t.Fatalf("线路数 = %d, 期望 3", len(cfg.Routes))
	}
	for _, route := range cfg.Routes {
		if route.Protocol != "tcp" {
			t.Errorf("线路 %s 协议 = %s, 期望 tcp", route.Key, route.Protocol)
		}
	}
	if cfg.Log.Level != "info" {
		t.Errorf("日志级别 = %s, 期望 info", cfg.Log.Level)
	}
}

func TestLoadCustomRoutes(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "agent.yaml", `
server:
  endpoint: http://127.0.0.1:8000
  token: test-token
routes:
  - key: gw
    target: 192.168.1.1
    protocol: icmp
  - key: dns
    target: 223.5.5.5:53
`)

	cfg, err := Load(fs, "agent.yaml")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if len(cfg.Routes) != 2 {
		t.Fatalf("线路数 = %d, 期望 2", len(cfg.Routes))
	}
	if cfg.Routes[0].Protocol != "icmp" {
		t.Errorf("协议 = %s, 期望 icmp", cfg.Routes[0].Protocol)
	}
	// 协议缺省补全为 tcp
	if cfg.Routes[1].Protocol != "tcp" {
		t.Errorf("协议 = %s, 期望 tcp", cfg.Routes[1].Protocol)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "agent.yaml", `
server:
  endpoint: http://127.0.0.1:8000
`)

	if _, err := Load(fs, "agent.yaml"); err == nil {
		t.Fatal("缺少上报凭证应该报错")
	}

	if _, err := Load(fs, "no-such-file.yaml"); err == nil {
		t.Fatal("文件不存在应该报错")
	}
}
