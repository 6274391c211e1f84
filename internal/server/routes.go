package server

import (
	mw "app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func registerRoutes(e *echo.Echo, h Handlers) {
	authMW := mw.AuthJWT(h.Issuer)
	activeMW := mw.ActiveUserGuard(h.UserRepo)
	adminMW := mw.AdminRoleGuard()
	optionalMW := mw.OptionalAuth(h.Issuer, h.UserRepo)

	h.Health.RegisterRoutes(e)

	// /auth はブルートフォース対策にレート制限をかける
	limit := h.RateLimit
	if limit <= 0 {
		limit = 10
	}
	authGroup := e.Group("/auth", echomw.RateLimiter(
		echomw.NewRateLimiterMemoryStore(rate.Limit(limit)),
	))
	h.Auth.RegisterRoutes(authGroup, authMW, activeMW)

	h.Post.RegisterRoutes(e, authMW, activeMW, optionalMW)
	h.AuditLog.RegisterRoutes(e, authMW, activeMW, adminMW)
}
