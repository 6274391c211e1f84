package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewSessionGormRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db}
}

// セッションを保存。
func (r *sessionGormRepository) Create(ctx context.Context, session *model.Session) error {
	//タイムアウトやキャンセルをDB処理に伝える
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return err
	}
	return nil
}

// token_hashで1件検索します。
func (r *sessionGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var session model.Session

	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

// Activeな行だけを条件付きUPDATEでRotatedにする。
// WHEREに状態と期限を含めるので、同じtokenの同時refreshは必ず片方が0件更新になる。
func (r *sessionGormRepository) MarkRotated(ctx context.Context, tokenHash string, now time.Time) (*model.Session, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("token_hash = ? AND rotated_at IS NULL AND revoked_at IS NULL AND expires_at > ?", tokenHash, now).
		Update("rotated_at", &now)

	if result.Error != nil {
		return nil, result.Error
	}

	// 0件更新は「未知・期限切れ・すでに使用済みのどれか」。理由は区別しない。
	if result.RowsAffected == 0 {
		return nil, repo.ErrSessionNotFound
	}

	var session model.Session
	if err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

// 指定ユーザーのActiveなセッションを全部Invalidatedにする。
// 対象0件でもエラーにしない。
func (r *sessionGormRepository) RevokeAllByUserID(ctx context.Context, userID string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND rotated_at IS NULL AND revoked_at IS NULL", userID).
		Update("revoked_at", &now)

	if result.Error != nil {
		return result.Error
	}
	return nil
}

// token_hashが一致するActiveなセッションだけをInvalidatedにする。
// 一致なしはno-op。
func (r *sessionGormRepository) RevokeByTokenHash(ctx context.Context, userID string, tokenHash string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND token_hash = ? AND rotated_at IS NULL AND revoked_at IS NULL", userID, tokenHash).
		Update("revoked_at", &now)

	if result.Error != nil {
		return result.Error
	}
	return nil
}

// 期限切れ行を物理削除する。コアからは呼ばない（運用スクリプト用）。
func (r *sessionGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.Session{})

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
