package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dushixiang/swallow/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WebsiteHandler 网站状态查询接口
type WebsiteHandler struct {
	logger         *zap.Logger
	websiteService *service.WebsiteService
}

func NewWebsiteHandler(logger *zap.Logger, websiteService *service.WebsiteService) *WebsiteHandler {
	return &WebsiteHandler{
		logger:         logger,
		websiteService: websiteService,
	}
}

// Status 查询网站最新状态
// GET /api/websites/:id/status
func (h *WebsiteHandler) Status(c echo.Context) error {
	websiteID := c.Param("id")
	website, err := h.websiteService.FindById(c.Request().Context(), websiteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "网站不存在",
			})
		}
		h.logger.Error("查询网站失败", zap.String("websiteId", websiteID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询失败",
		})
	}

	return c.JSON(http.StatusOK, website)
}

// Events 查询网站最近24小时的检测事件，最新在前
// GET /api/websites/:id/events
func (h *WebsiteHandler) Events(c echo.Context) error {
	websiteID := c.Param("id")
	if _, err := h.websiteService.FindById(c.Request().Context(), websiteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "网站不存在",
			})
		}
		h.logger.Error("查询网站失败", zap.String("websiteId", websiteID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询失败",
		})
	}

	events, err := h.websiteService.FindRecentEvents(c.Request().Context(), websiteID, time.Now())
	if err != nil {
		h.logger.Error("查询检测事件失败", zap.String("websiteId", websiteID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询失败",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": events,
		"total": len(events),
	})
}
