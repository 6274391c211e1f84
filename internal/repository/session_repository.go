package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// セッション（refresh token 1発行 = 1行）の保存・状態遷移。
// 行の削除はDeleteExpiredだけ（運用スクリプト用）。通常フローは無効化のみ。
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	//token_hashで1件取得（状態は見ない）
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	//Activeな行だけを条件付きUPDATEでRotatedにする。
	//0件更新（未知・期限切れ・使用済みのいずれか）はErrSessionNotFound。
	//同じtokenで同時に呼ばれても勝者は1つだけになる。
	MarkRotated(ctx context.Context, tokenHash string, now time.Time) (*model.Session, error)
	//指定ユーザーのActiveなセッションを全部Invalidatedにする
	RevokeAllByUserID(ctx context.Context, userID string, now time.Time) error
	//token_hashが一致するActiveなセッションだけをInvalidatedにする。
	//一致なしはエラーにしない（no-op）。
	RevokeByTokenHash(ctx context.Context, userID string, tokenHash string, now time.Time) error
	//期限切れ行の掃除（コアは呼ばない。外部のハウスキーピング用）
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
