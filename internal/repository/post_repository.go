package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type PostListQuery struct {
	Page     int
	Limit    int
	Q        string
	AuthorID string
}

// 投稿の永続化（保存・取得）だけを約束。
type PostRepository interface {
	ListPublished(ctx context.Context, q PostListQuery) ([]model.Post, int64, error)
	FindByID(ctx context.Context, id string) (model.Post, error)

	Create(ctx context.Context, p model.Post) (model.Post, error)
	Update(ctx context.Context, p model.Post) error
	SoftDelete(ctx context.Context, id string) error
}
