package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PostGormRepository struct {
	db *gorm.DB
}

// DI
func NewPostGormRepository(db *gorm.DB) *PostGormRepository {
	return &PostGormRepository{db: db}
}

// 公開済み投稿のみを、検索/ページング付きで返す。
func (r *PostGormRepository) ListPublished(ctx context.Context, q repo.PostListQuery) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Post{})

	// 公開（published=true）かつ削除されていないものだけ
	tx = tx.Where("published = ?", true)

	// qはtitleを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("title ILIKE ?", like)
	}

	//著者で絞り込み
	if q.AuthorID != "" {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Post{}, 0, err
	}

	tx = tx.Order("created_at desc").Order("id desc")

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&posts).Error; err != nil {
		return []model.Post{}, 0, err
	}

	return posts, total, nil
}

// IDで投稿を取得
func (r *PostGormRepository) FindByID(ctx context.Context, id string) (model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Post{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Post{}, err
	}
	return p, nil
}

// 投稿を新規作成
func (r *PostGormRepository) Create(ctx context.Context, p model.Post) (model.Post, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Post{}, err
	}
	return p, nil
}

// 投稿を更新
func (r *PostGormRepository) Update(ctx context.Context, p model.Post) error {
	res := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"title":     p.Title,
			"content":   p.Content,
			"published": p.Published,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 論理削除
func (r *PostGormRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
