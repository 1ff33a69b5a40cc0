package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dushixiang/swallow/internal/models"
	"go.uber.org/zap"
)

func TestNotifierDisabledIsNoop(t *testing.T) {
	db := newTestDB(t)
	propertyService := NewPropertyService(zap.NewNop(), db)

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	notifier := NewNotifier(zap.NewNop(), propertyService)
	notifier.apiBase = server.URL

	// 未配置任何渠道时不发起任何请求
	notifier.dispatch(context.Background(), "测试消息")
	if requests != 0 {
		t.Fatalf("请求次数 = %d, 期望 0", requests)
	}
}

func TestNotifierSendsTelegram(t *testing.T) {
	db := newTestDB(t)
	propertyService := NewPropertyService(zap.NewNop(), db)

	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := propertyService.SetTelegramConfig(context.Background(), &models.TelegramConfig{
		Enabled: true,
		Token:   "test-token",
		ChatID:  "12345",
	})
	if err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	notifier := NewNotifier(zap.NewNop(), propertyService)
	notifier.apiBase = server.URL
	notifier.dispatch(context.Background(), "🔴 网站故障")

	if !strings.Contains(gotPath, "bottest-token") {
		t.Errorf("请求路径 = %s, 期望包含 token", gotPath)
	}
	if gotBody["chat_id"] != "12345" {
		t.Errorf("chat_id = %s, 期望 12345", gotBody["chat_id"])
	}
	if gotBody["text"] != "🔴 网站故障" {
		t.Errorf("text = %s, 期望原始消息", gotBody["text"])
	}
}

func TestNotifierTelegramFailureSwallowed(t *testing.T) {
	db := newTestDB(t)
	propertyService := NewPropertyService(zap.NewNop(), db)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := propertyService.SetTelegramConfig(context.Background(), &models.TelegramConfig{
		Enabled: true,
		Token:   "test-token",
		ChatID:  "12345",
	})
	if err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	notifier := NewNotifier(zap.NewNop(), propertyService)
	notifier.apiBase = server.URL

	// 发送失败只记录日志，不会 panic 也不上抛
	notifier.dispatch(context.Background(), "测试消息")
}

func TestBuildMessages(t *testing.T) {
	website := &models.Website{Name: "官网", URL: "https://example.com"}

	down := buildWebsiteDownMessage(website, CheckResult{Status: models.StatusDown, StatusCode: 503})
	if !strings.Contains(down, "官网") || !strings.Contains(down, "503") {
		t.Errorf("故障消息缺少关键信息: %s", down)
	}

	timeout := buildWebsiteDownMessage(website, CheckResult{Status: models.StatusTimeout})
	if strings.Contains(timeout, "状态码") {
		t.Errorf("无响应时不应包含状态码: %s", timeout)
	}

	recovered := buildWebsiteRecoveredMessage(website, CheckResult{Status: models.StatusUp, ResponseTime: 88})
	if !strings.Contains(recovered, "88") {
		t.Errorf("恢复消息缺少响应耗时: %s", recovered)
	}
}
