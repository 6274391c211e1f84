package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type PostUsecase struct {
	postRepo repo.PostRepository
	audit    AuditRecorder
	idGen    IDGenerator
}

// DI
func NewPostUsecase(
	postRepo repo.PostRepository,
	audit AuditRecorder,
	idGen IDGenerator,
) *PostUsecase {
	return &PostUsecase{
		postRepo: postRepo,
		audit:    audit,
		idGen:    idGen,
	}
}

// GET /postsの入力DTO
type ListPostsInput struct {
	Page     int
	Limit    int
	Q        string
	AuthorID string
}

type PostListOutput struct {
	Items []model.Post `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// 公開済み投稿の一覧（未ログインでも見える）
func (u *PostUsecase) ListPublishedPosts(ctx context.Context, in ListPostsInput) (PostListOutput, error) {
	if in.Page < 1 {
		return PostListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return PostListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return PostListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.postRepo.ListPublished(ctx, repo.PostListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		AuthorID: in.AuthorID,
	})
	if err != nil {
		return PostListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PostListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 投稿詳細。下書きは作者本人と管理者以外には404。
func (u *PostUsecase) GetPostDetail(ctx context.Context, postID string, viewerID string, viewerRole model.Role) (model.Post, error) {
	if postID == "" {
		return model.Post{}, NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	p, err := u.postRepo.FindByID(ctx, postID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Post{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Post{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.Published && p.AuthorID != viewerID && viewerRole != model.RoleAdmin {
		return model.Post{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

type CreatePostInput struct {
	Title     string
	Content   string
	Published bool
}

func (u *PostUsecase) CreatePost(ctx context.Context, authorID string, in CreatePostInput, prov Provenance) (model.Post, error) {
	if authorID == "" {
		return model.Post{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Post{}, NewHTTPError(http.StatusBadRequest, "title required")
	}
	if len(in.Title) > 255 {
		return model.Post{}, NewHTTPError(http.StatusBadRequest, "title too long")
	}

	p, err := u.postRepo.Create(ctx, model.Post{
		ID:        u.idGen.NewID(),
		AuthorID:  authorID,
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		Published: in.Published,
	})
	if err != nil {
		return model.Post{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit.Record(ctx, AuditEvent{
		ActorUserID:  &authorID,
		Action:       model.AuditActionPostCreate,
		ResourceType: model.AuditResourcePost,
		ResourceID:   &p.ID,
		After:        p,
		IPAddress:    prov.IPAddress,
		UserAgent:    prov.UserAgent,
	})

	return p, nil
}

type UpdatePostInput struct {
	Title     string
	Content   string
	Published bool
}

// 更新できるのは作者本人だけ（管理者は削除のみ）
func (u *PostUsecase) UpdatePost(ctx context.Context, actorID string, postID string, in UpdatePostInput) (model.Post, error) {
	if actorID == "" {
		return model.Post{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if postID == "" {
		return model.Post{}, NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Post{}, NewHTTPError(http.StatusBadRequest, "title required")
	}

	p, err := u.postRepo.FindByID(ctx, postID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Post{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Post{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.AuthorID != actorID {
		return model.Post{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	p.Title = strings.TrimSpace(in.Title)
	p.Content = in.Content
	p.Published = in.Published
	if err := u.postRepo.Update(ctx, p); err != nil {
		return model.Post{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 削除できるのは作者本人と管理者
func (u *PostUsecase) DeletePost(ctx context.Context, actorID string, actorRole model.Role, postID string, prov Provenance) error {
	if actorID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if postID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	p, err := u.postRepo.FindByID(ctx, postID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.AuthorID != actorID && actorRole != model.RoleAdmin {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := u.postRepo.SoftDelete(ctx, postID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit.Record(ctx, AuditEvent{
		ActorUserID:  &actorID,
		Action:       model.AuditActionPostDelete,
		ResourceType: model.AuditResourcePost,
		ResourceID:   &postID,
		Before:       p,
		IPAddress:    prov.IPAddress,
		UserAgent:    prov.UserAgent,
	})

	return nil
}
