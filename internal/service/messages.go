package service

import (
	"fmt"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/valyala/fasttemplate"
)

// 通知消息模板
const (
	websiteDownTemplate      = "🔴 网站故障\n名称：${name}\nURL：${url}\n状态：${status}${detail}"
	websiteRecoveredTemplate = "🟢 网站恢复\n名称：${name}\nURL：${url}\n响应耗时：${responseTime}ms"
	agentDownTemplate        = "🔴 探针失联\n名称：${name}${detail}"
	agentRecoveredTemplate   = "🟢 探针恢复上报\n名称：${name}"
)

func buildWebsiteDownMessage(website *models.Website, result CheckResult) string {
	detail := ""
	if result.StatusCode > 0 {
		detail = fmt.Sprintf("\n状态码：%d", result.StatusCode)
	}
	return fasttemplate.ExecuteString(websiteDownTemplate, "${", "}", map[string]interface{}{
		"name":   website.Name,
		"url":    website.URL,
		"status": string(result.Status),
		"detail": detail,
	})
}

func buildWebsiteRecoveredMessage(website *models.Website, result CheckResult) string {
	return fasttemplate.ExecuteString(websiteRecoveredTemplate, "${", "}", map[string]interface{}{
		"name":         website.Name,
		"url":          website.URL,
		"responseTime": fmt.Sprintf("%d", result.ResponseTime),
	})
}

func buildAgentDownMessage(agent *models.Agent, silentFor time.Duration) string {
	detail := "\n从未收到上报"
	if silentFor > 0 {
		detail = fmt.Sprintf("\n已失联：%d分钟", int(silentFor.Minutes()))
	}
	return fasttemplate.ExecuteString(agentDownTemplate, "${", "}", map[string]interface{}{
		"name":   agent.Name,
		"detail": detail,
	})
}

func buildAgentRecoveredMessage(agent *models.Agent) string {
	return fasttemplate.ExecuteString(agentRecoveredTemplate, "${", "}", map[string]interface{}{
		"name": agent.Name,
	})
}
