package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// 死活監視用
type HealthHandler struct {
	db *gorm.DB
}

// DI
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.check)
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// GET /health
// DBに届かないときは503を返す（LBが切り離せるように）。
func (h *HealthHandler) check(c echo.Context) error {
	res := healthResponse{
		Status:    "ok",
		Database:  "up",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		res.Status = "degraded"
		res.Database = "down"
		return c.JSON(http.StatusServiceUnavailable, res)
	}

	return c.JSON(http.StatusOK, res)
}
