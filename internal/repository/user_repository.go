package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// email/usernameの一意制約違反を統一
var ErrDuplicateUser = errors.New("duplicate user")

// ユーザーの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。email/username重複はErrDuplicateUser。
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを1件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//メールまたはユーザー名に一致するユーザーを1件取得する（サインアップの重複チェック用）。
	FindByEmailOrUsername(ctx context.Context, email string, username string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//ロックアウトのカウンタだけを更新する
	UpdateLockState(ctx context.Context, userID string, state model.LockState) error
	//password_hashだけを更新する
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}
