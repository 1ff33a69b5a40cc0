package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 注册全部 HTTP 路由
func RegisterRoutes(e *echo.Echo, agentHandler *AgentHandler, websiteHandler *WebsiteHandler, propertyHandler *PropertyHandler) {
	api := e.Group("/api")

	// 探针上报
	api.POST("/agent/report", agentHandler.Report)
	api.GET("/agent/interval", agentHandler.Interval)

	// 状态查询
	api.GET("/agents/:id/status", agentHandler.Status)
	api.GET("/websites/:id/status", websiteHandler.Status)
	api.GET("/websites/:id/events", websiteHandler.Events)

	// 全局配置
	api.GET("/property/report-interval", propertyHandler.GetReportInterval)
	api.PUT("/property/report-interval", propertyHandler.SetReportInterval)
}
