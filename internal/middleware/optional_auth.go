package middleware

import (
	"strings"

	"app/internal/repository"
	"app/internal/token"

	"github.com/labstack/echo/v4"
)

// 公開エンドポイント用。tokenがあれば本人情報をcontextに入れ、
// なければ（壊れていても）匿名のまま通す。401は返さない。
// 「ログイン済みなら自分の下書きも見える」系の判定に使う。
func OptionalAuth(issuer *token.Issuer, userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return next(c)
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return next(c)
			}

			//検証に失敗しても拒否せず匿名として扱う
			claims, err := issuer.Verify(rawToken, token.KindAccess)
			if err != nil {
				return next(c)
			}

			//停止済みユーザーも匿名扱い（roleを信用しない）
			user, err := userRepo.FindByID(c.Request().Context(), claims.Subject)
			if err != nil || user == nil || !user.IsActive {
				return next(c)
			}

			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUserRoleKey, string(user.Role))

			return next(c)
		}
	}
}
