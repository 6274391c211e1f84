package model

import "time"

// ロックアウトの設定値（しきい値とロック時間）
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// ユーザーの失敗カウンタをDBから切り離した値オブジェクト。
// 遷移は純関数にして、DBなしで単体テストできるようにする。
type LockState struct {
	Attempts  int
	LockUntil *time.Time
}

// ログイン失敗を1回記録した後の状態を返す。
// しきい値に達したらlock_untilを now+LockDuration にセット。
func (s LockState) Fail(now time.Time, p LockoutPolicy) LockState {
	next := LockState{Attempts: s.Attempts + 1, LockUntil: s.LockUntil}
	if next.Attempts >= p.MaxAttempts {
		until := now.Add(p.LockDuration)
		next.LockUntil = &until
	}
	return next
}

// ログイン成功でカウンタとロックをクリアした状態を返す。
func (s LockState) Reset() LockState {
	return LockState{Attempts: 0, LockUntil: nil}
}

// 現在ロック中かどうか
func (s LockState) Locked(now time.Time) bool {
	return s.LockUntil != nil && s.LockUntil.After(now)
}

// ロック解除までの残り分数（ユーザー向けメッセージ用・切り上げ）
func (s LockState) RemainingMinutes(now time.Time) int {
	if !s.Locked(now) {
		return 0
	}
	rem := s.LockUntil.Sub(now)
	mins := int((rem + time.Minute - 1) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return mins
}

// Userの現在のロック状態を取り出す
func (u *User) LockState() LockState {
	return LockState{Attempts: u.LoginAttempts, LockUntil: u.LockUntil}
}

// LockStateをUserへ書き戻す
func (u *User) ApplyLockState(s LockState) {
	u.LoginAttempts = s.Attempts
	u.LockUntil = s.LockUntil
}
