package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dushixiang/swallow/internal/protocol"
	"github.com/dushixiang/swallow/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenHeader 探针上报凭证头
const TokenHeader = "X-Agent-Token"

// AgentHandler 探针相关接口
type AgentHandler struct {
	logger          *zap.Logger
	agentService    *service.AgentService
	metricService   *service.MetricService
	propertyService *service.PropertyService
}

func NewAgentHandler(logger *zap.Logger, agentService *service.AgentService, metricService *service.MetricService, propertyService *service.PropertyService) *AgentHandler {
	return &AgentHandler{
		logger:          logger,
		agentService:    agentService,
		metricService:   metricService,
		propertyService: propertyService,
	}
}

// authenticate 校验上报凭证，返回对应探针
func (h *AgentHandler) authenticate(c echo.Context) (string, error) {
	token := c.Request().Header.Get(TokenHeader)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "缺少上报凭证")
	}
	agent, err := h.agentService.FindByToken(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "上报凭证无效")
		}
		h.logger.Error("校验上报凭证失败", zap.Error(err))
		return "", echo.NewHTTPError(http.StatusInternalServerError, "鉴权失败")
	}
	return agent.ID, nil
}

// Report 接收探针指标上报
// POST /api/agent/report
func (h *AgentHandler) Report(c echo.Context) error {
	agentID, err := h.authenticate(c)
	if err != nil {
		return err
	}

	var report protocol.MetricReport
	if err := c.Bind(&report); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "请求体格式错误",
		})
	}
	if err := validate.Struct(&report); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": translateError(err),
		})
	}

	if err := h.metricService.Ingest(c.Request().Context(), agentID, &report); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "保存上报数据失败",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "ok",
	})
}

// Interval 查询当前上报间隔
// GET /api/agent/interval
func (h *AgentHandler) Interval(c echo.Context) error {
	if _, err := h.authenticate(c); err != nil {
		return err
	}

	interval := h.propertyService.GetReportInterval(c.Request().Context())
	return c.JSON(http.StatusOK, protocol.IntervalResponse{
		Interval: interval,
	})
}

// Status 查询探针的在线状态与最新快照
// GET /api/agents/:id/status
func (h *AgentHandler) Status(c echo.Context) error {
	agentID := c.Param("id")
	agent, err := h.agentService.FindById(c.Request().Context(), agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "探针不存在",
			})
		}
		h.logger.Error("查询探针失败", zap.String("agentId", agentID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询失败",
		})
	}

	snapshot, err := h.metricService.GetLatest(c.Request().Context(), agentID)
	if err != nil {
		h.logger.Error("查询探针快照失败", zap.String("agentId", agentID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询失败",
		})
	}

	online := false
	if snapshot != nil {
		silent := time.Duration(time.Now().UnixMilli()-snapshot.Timestamp) * time.Millisecond
		online = silent <= service.StaleThreshold
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":       agent.ID,
		"name":     agent.Name,
		"weight":   agent.Weight,
		"online":   online,
		"snapshot": snapshot,
	})
}
