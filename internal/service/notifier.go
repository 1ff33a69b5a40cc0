package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const telegramAPIBase = "https://api.telegram.org"

// Notifier 通知分发器
// 所有渠道都是尽力而为：渠道禁用或凭证缺失时直接跳过，
// 发送失败只记录日志，从不重试、排队或向调用方上抛。
type Notifier struct {
	logger          *zap.Logger
	propertyService *PropertyService
	client          *http.Client
	apiBase         string
}

func NewNotifier(logger *zap.Logger, propertyService *PropertyService) *Notifier {
	return &Notifier{
		logger:          logger,
		propertyService: propertyService,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiBase: telegramAPIBase,
	}
}

// Send 异步派发一条通知，不阻塞调用方（带panic恢复）
// 使用新的 context，避免父 context 取消影响发送。
func (n *Notifier) Send(_ context.Context, message string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("发送通知时发生panic", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n.dispatch(ctx, message)
	}()
}

// dispatch 逐渠道发送，单渠道失败不影响其他渠道
func (n *Notifier) dispatch(ctx context.Context, message string) {
	telegram, err := n.propertyService.GetTelegramConfig(ctx)
	if err != nil {
		n.logger.Error("读取 Telegram 通知配置失败", zap.Error(err))
	} else if telegram.Enabled && telegram.Token != "" && telegram.ChatID != "" {
		if err := n.sendTelegram(ctx, telegram, message); err != nil {
			n.logger.Error("发送 Telegram 通知失败", zap.Error(err))
		}
	}

	mail, err := n.propertyService.GetMailConfig(ctx)
	if err != nil {
		n.logger.Error("读取邮件通知配置失败", zap.Error(err))
	} else if mail.Enabled && mail.Host != "" && mail.To != "" {
		if err := n.sendMail(mail, message); err != nil {
			n.logger.Error("发送邮件通知失败", zap.Error(err))
		}
	}
}

// sendTelegram 调用 Bot API 发送消息，只发一次
func (n *Notifier) sendTelegram(ctx context.Context, config *models.TelegramConfig, message string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": config.ChatID,
		"text":    message,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, config.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram 响应异常: %d %s", resp.StatusCode, string(body))
	}
	return nil
}

// sendMail 通过 SMTP 发送消息
func (n *Notifier) sendMail(config *models.MailConfig, message string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", config.Username)
	m.SetHeader("To", config.To)
	m.SetHeader("Subject", "Swallow 监控告警")
	m.SetBody("text/plain", message)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return d.DialAndSend(m)
}
