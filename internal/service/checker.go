package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dushixiang/swallow/internal/models"
)

// CheckTimeout 单次可达性检测总超时
const CheckTimeout = 15 * time.Second

// CheckResult 单次可达性检测结果
type CheckResult struct {
	Status       models.Status `json:"status"`
	StatusCode   int           `json:"statusCode"`   // 无响应时为 0
	ResponseTime int64         `json:"responseTime"` // 毫秒
}

// Checker 网站可达性检测器
type Checker struct {
	client  *http.Client
	timeout time.Duration
}

// NewChecker 创建检测器
func NewChecker() *Checker {
	// 自定义 HTTP 客户端：允许自签名证书，限制重定向次数为 10
	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}

	return &Checker{
		client:  client,
		timeout: CheckTimeout,
	}
}

// Check 对目标地址执行一次 HEAD 探测并分类结果
// 2xx-4xx 视为 up（4xx 说明服务端仍在响应），5xx 视为 down，
// 超时归类为 timeout，其余传输错误（DNS/拒连/TLS）归类为 error。
// 永不返回错误，所有失败路径都落入四种状态之一，不做重试。
func (c *Checker) Check(ctx context.Context, rawURL string) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return CheckResult{Status: models.StatusError}
	}

	startTime := time.Now()
	resp, err := c.client.Do(req)
	responseTime := time.Since(startTime).Milliseconds()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return CheckResult{Status: models.StatusTimeout, ResponseTime: responseTime}
		}
		return CheckResult{Status: models.StatusError, ResponseTime: responseTime}
	}
	defer resp.Body.Close()

	status := models.StatusUp
	if resp.StatusCode >= http.StatusInternalServerError {
		status = models.StatusDown
	}

	return CheckResult{
		Status:       status,
		StatusCode:   resp.StatusCode,
		ResponseTime: responseTime,
	}
}
