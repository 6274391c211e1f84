package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	mw "app/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOptionalAuth_ValidTokenSetsIdentity(t *testing.T) {
	issuer := newTestIssuer()
	signed, _, err := issuer.IssueAccess("u1", time.Now())
	assert.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, "u1").Return(&model.User{
		ID: "u1", Role: model.RoleUser, IsActive: true,
	}, nil)

	rec, c := invoke(t, []echo.MiddlewareFunc{mw.OptionalAuth(issuer, users)}, "Bearer "+signed)

	assert.Equal(t, http.StatusOK, rec.Code)

	userID, ok := mw.UserIDFrom(c)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)

	role, ok := mw.UserRoleFrom(c)
	assert.True(t, ok)
	assert.Equal(t, "USER", role)
}

// tokenなしは匿名のまま通す（401にしない）
func TestOptionalAuth_NoTokenPassesAnonymously(t *testing.T) {
	users := new(MockUserRepository)

	rec, c := invoke(t, []echo.MiddlewareFunc{mw.OptionalAuth(newTestIssuer(), users)}, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	_, ok := mw.UserIDFrom(c)
	assert.False(t, ok)
}

// 壊れたtokenも匿名扱いで通す
func TestOptionalAuth_GarbageTokenPassesAnonymously(t *testing.T) {
	users := new(MockUserRepository)

	rec, c := invoke(t, []echo.MiddlewareFunc{mw.OptionalAuth(newTestIssuer(), users)}, "Bearer garbage")

	assert.Equal(t, http.StatusOK, rec.Code)

	_, ok := mw.UserIDFrom(c)
	assert.False(t, ok)
}

// 停止済みユーザーのtokenは匿名扱い（roleを載せない）
func TestOptionalAuth_InactiveUserTreatedAsAnonymous(t *testing.T) {
	issuer := newTestIssuer()
	signed, _, err := issuer.IssueAccess("u1", time.Now())
	assert.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, "u1").Return(&model.User{
		ID: "u1", Role: model.RoleAdmin, IsActive: false,
	}, nil)

	rec, c := invoke(t, []echo.MiddlewareFunc{mw.OptionalAuth(issuer, users)}, "Bearer "+signed)

	assert.Equal(t, http.StatusOK, rec.Code)

	_, ok := mw.UserIDFrom(c)
	assert.False(t, ok)
	_, ok = mw.UserRoleFrom(c)
	assert.False(t, ok)
}

// refresh tokenではログイン扱いにならない
func TestOptionalAuth_RefreshTokenTreatedAsAnonymous(t *testing.T) {
	issuer := newTestIssuer()
	refresh, _, err := issuer.IssueRefresh("u1", time.Now())
	assert.NoError(t, err)

	users := new(MockUserRepository)

	rec, c := invoke(t, []echo.MiddlewareFunc{mw.OptionalAuth(issuer, users)}, "Bearer "+refresh)

	assert.Equal(t, http.StatusOK, rec.Code)

	_, ok := mw.UserIDFrom(c)
	assert.False(t, ok)
}
