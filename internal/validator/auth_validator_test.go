package validator

import (
	"context"
	"testing"

	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignUp_OK(t *testing.T) {
	v := NewAuthValidator()

	err := v.ValidateSignUp(context.Background(), "user@test.com", "taro", "Str0ng!Pass")
	assert.NoError(t, err)
}

func TestValidateSignUp_MissingFields(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.ValidateSignUp(ctx, "", "taro", "Str0ng!Pass"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateSignUp(ctx, "user@test.com", "", "Str0ng!Pass"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateSignUp(ctx, "user@test.com", "taro", ""), usecase.ErrValidation)
}

func TestValidateSignUp_InvalidEmail(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	for _, email := range []string{"no-at-mark", "a@b", "a b@test.com", "@test.com"} {
		assert.ErrorIs(t, v.ValidateSignUp(ctx, email, "taro", "Str0ng!Pass"), usecase.ErrValidation, email)
	}
}

func TestValidateSignUp_ShortUsername(t *testing.T) {
	v := NewAuthValidator()

	err := v.ValidateSignUp(context.Background(), "user@test.com", "ab", "Str0ng!Pass")
	assert.ErrorIs(t, err, usecase.ErrValidation)
}

// パスワード強度：8文字以上 + 大文字・小文字・数字・記号
func TestValidateNewPassword_WeakPatterns(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "S0r!t"},
		{"no uppercase", "weak1pass!"},
		{"no lowercase", "WEAK1PASS!"},
		{"no digit", "WeakPass!!"},
		{"no symbol", "WeakPass123"},
	}

	for _, tc := range cases {
		err := v.ValidateNewPassword(ctx, tc.password)
		assert.ErrorIs(t, err, usecase.ErrWeakPassword, tc.name)
	}
}

// 足りない種別がメッセージに列挙される
func TestValidateNewPassword_MissingClassesListed(t *testing.T) {
	v := NewAuthValidator()

	err := v.ValidateNewPassword(context.Background(), "alllower")
	assert.ErrorIs(t, err, usecase.ErrWeakPassword)
	assert.Contains(t, err.Error(), "uppercase letter")
	assert.Contains(t, err.Error(), "digit")
	assert.Contains(t, err.Error(), "symbol")
	assert.NotContains(t, err.Error(), "lowercase")
}

func TestValidateNewPassword_OK(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	for _, pw := range []string{"Str0ng!Pass", `Aa1"aaaaa`, "P@ssw0rd"} {
		assert.NoError(t, v.ValidateNewPassword(ctx, pw), pw)
	}
}

func TestValidateSignIn(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateSignIn(ctx, "user@test.com", "anything"))
	//ログインでは強度チェックしない（昔の弱いパスワードでも通す）
	assert.NoError(t, v.ValidateSignIn(ctx, "user@test.com", "weak"))

	assert.ErrorIs(t, v.ValidateSignIn(ctx, "", "pw"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateSignIn(ctx, "user@test.com", ""), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateSignIn(ctx, "not-an-email", "pw"), usecase.ErrValidation)
}
