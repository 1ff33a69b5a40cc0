package handler

import (
	"net/http"

	"github.com/dushixiang/swallow/internal/protocol"
	"github.com/dushixiang/swallow/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PropertyHandler 全局配置接口
type PropertyHandler struct {
	logger          *zap.Logger
	propertyService *service.PropertyService
}

func NewPropertyHandler(logger *zap.Logger, propertyService *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		logger:          logger,
		propertyService: propertyService,
	}
}

// GetReportInterval 查询全局上报间隔
// GET /api/property/report-interval
func (h *PropertyHandler) GetReportInterval(c echo.Context) error {
	interval := h.propertyService.GetReportInterval(c.Request().Context())
	return c.JSON(http.StatusOK, protocol.IntervalResponse{
		Interval: interval,
	})
}

// SetReportInterval 修改全局上报间隔
// PUT /api/property/report-interval
func (h *PropertyHandler) SetReportInterval(c echo.Context) error {
	var req protocol.IntervalResponse
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "请求参数错误",
		})
	}

	if err := h.propertyService.SetReportInterval(c.Request().Context(), req.Interval); err != nil {
		h.logger.Error("修改上报间隔失败", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "保存成功",
	})
}
