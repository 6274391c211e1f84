package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"
	"app/internal/token"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// ルーティングに必要な部品一式
type Handlers struct {
	Auth     *handler.AuthHandler
	Post     *handler.PostHandler
	AuditLog *handler.AuditLogHandler
	Health   *handler.HealthHandler

	UserRepo  repository.UserRepository // ActiveUserGuard用
	Issuer    *token.Issuer             // AuthJWT用
	RateLimit float64                   // /auth 配下のreq/sec上限
}

func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Secure())

	//CORSはフロントのoriginだけ許可（cookieを使うのでcredentials必須）
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	registerRoutes(e, h)

	return e
}

// Start はHTTPサーバを起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
