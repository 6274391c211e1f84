package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"app/internal/usecase"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcryptの入力上限
	maxEmailLength    = 255
	maxUsernameLength = 50
)

// パスワードに必須の記号
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateSignUp(ctx context.Context, email string, username string, password string) error {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	// 必須チェック
	if email == "" || username == "" || password == "" {
		return fmt.Errorf("%w: email, username and password are required", usecase.ErrValidation)
	}

	// email形式
	if len(email) > maxEmailLength || !isEmailLike(email) {
		return fmt.Errorf("%w: invalid email format", usecase.ErrValidation)
	}

	if len(username) < 3 || len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be 3-%d characters", usecase.ErrValidation, maxUsernameLength)
	}

	// パスワード強度
	return v.ValidateNewPassword(ctx, password)
}

// サインインの入力を検証。
// 強度チェックはしない（昔の弱いパスワードでもログインはできる）。
func (v *authValidator) ValidateSignIn(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", usecase.ErrValidation)
	}

	// email形式
	if !isEmailLike(email) {
		return fmt.Errorf("%w: invalid email format", usecase.ErrValidation)
	}

	return nil
}

// 新しいパスワードの強度を検証。
// 8文字以上 + 大文字・小文字・数字・記号を各1つ以上。
// 足りない種別はエラーメッセージに全部列挙する。
func (v *authValidator) ValidateNewPassword(ctx context.Context, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", usecase.ErrWeakPassword, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", usecase.ErrWeakPassword, maxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "digit")
	}
	if !hasSymbol {
		missing = append(missing, "symbol")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: password must contain %s", usecase.ErrWeakPassword, strings.Join(missing, ", "))
	}

	return nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
