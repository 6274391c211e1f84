package usecase

import (
	"errors"
	"fmt"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//409 email/usernameが既に使われている
	ErrDuplicateIdentity = errors.New("email or username already exists")
	//400 パスワード強度不足（理由はwrapして付ける）
	ErrWeakPassword = errors.New("weak password")
	//401 ユーザー不在とパスワード違いは同じエラーにする（列挙攻撃対策）
	ErrInvalidCredentials = errors.New("invalid credentials")
	//401 未知・期限切れ・使用済みのrefreshはすべてこれ（理由は漏らさない）
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	//403 停止済みユーザー
	ErrUserInactive = errors.New("user is inactive")
	//503 分類できない永続化エラー
	ErrStoreUnavailable = errors.New("store unavailable")
)

// アカウントロック中。残り分数だけはユーザーに見せてよい。
type AccountLockedError struct {
	RemainingMinutes int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is locked. try again in %d minutes", e.RemainingMinutes)
}

// errors.Is(err, ErrAccountLocked) で判定できるようにする
var ErrAccountLocked = errors.New("account is locked")

func (e *AccountLockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// 予期しないrepoエラーをStoreUnavailableに包む
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
