package model

import "time"

// 発行済みrefresh tokenを1行で表す。
// 状態はActive -> Rotated（refresh時）/ Active -> Invalidated（logout・パスワード変更時）。
// どちらも終端で、Activeへは戻らない。行は物理削除しない（履歴として残す）。
type Session struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string     `json:"user_id" gorm:"type:uuid;not null;index"`
	TokenHash string     `json:"-" gorm:"not null;uniqueIndex"`
	UserAgent string     `json:"user_agent"`
	IPAddress string     `json:"ip_address"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null;index"`
	RotatedAt *time.Time `json:"rotated_at" gorm:"index"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// rotated_atもrevoked_atも付いていなければActive
func (s *Session) Active(now time.Time) bool {
	return s.RotatedAt == nil && s.RevokedAt == nil && s.ExpiresAt.After(now)
}
