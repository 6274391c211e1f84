package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/echo/v4"
)

// 監査ログの閲覧API（ADMIN専用）
type AuditLogHandler struct {
	logs repo.AuditLogRepository
}

// DI
func NewAuditLogHandler(logs repo.AuditLogRepository) *AuditLogHandler {
	return &AuditLogHandler{logs: logs}
}

func (h *AuditLogHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc, activeMW echo.MiddlewareFunc, adminMW echo.MiddlewareFunc) {
	e.GET("/admin/audit-logs", h.list, authMW, activeMW, adminMW)
}

type auditLogListResponse struct {
	Items []model.AuditLog `json:"items"`
}

// GET /admin/audit-logs
// actor_user_id / action / resource_type / resource_id / from / to で絞り込める。
func (h *AuditLogHandler) list(c echo.Context) error {
	var filter repo.AuditLogFilter

	if v := c.QueryParam("actor_user_id"); v != "" {
		filter.ActorUserID = &v
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		filter.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		filter.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		filter.ResourceID = &v
	}

	//from/toはRFC3339
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		filter.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		filter.CreatedTo = &t
	}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		filter.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil || o < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		filter.Offset = o
	}

	items, err := h.logs.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, auditLogListResponse{Items: items})
}
