package usecase

import "time"

// 現在時刻。ロックアウトや期限の判定をテストできるように注入する。
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}
