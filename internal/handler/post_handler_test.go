package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/handler"
	mw "app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/token"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: PostRepository
// =====================

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) ListPublished(ctx context.Context, q repo.PostListQuery) ([]model.Post, int64, error) {
	args := m.Called(ctx, q)
	posts, _ := args.Get(0).([]model.Post)
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id string) (model.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Post)
	return p, args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, p model.Post) (model.Post, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Post)
	return out, args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, p model.Post) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmailOrUsername(ctx context.Context, email string, username string) (*model.User, error) {
	args := m.Called(ctx, email, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLockState(ctx context.Context, userID string, state model.LockState) error {
	args := m.Called(ctx, userID, state)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// =====================
// Fake: Audit / IDGen
// =====================

type noopAudit struct{}

func (noopAudit) Record(ctx context.Context, ev usecase.AuditEvent) {}

type stubIDGen struct{}

func (stubIDGen) NewID() string { return "id-1" }

// =====================
// Helper
// =====================

// routes.goと同じ構成で/postsのルートを組み立てる
func newPostServer() (*echo.Echo, *MockPostRepository, *MockUserRepository, *token.Issuer) {
	e := echo.New()
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	issuer := token.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour)

	uc := usecase.NewPostUsecase(postRepo, noopAudit{}, stubIDGen{})
	h := handler.NewPostHandler(uc)

	h.RegisterRoutes(e,
		mw.AuthJWT(issuer),
		mw.ActiveUserGuard(userRepo),
		mw.OptionalAuth(issuer, userRepo),
	)
	return e, postRepo, userRepo, issuer
}

func getPost(e *echo.Echo, postID string, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/posts/"+postID, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var draftPost = model.Post{
	ID:        "p1",
	AuthorID:  "u1",
	Title:     "draft title",
	Content:   "wip",
	Published: false,
}

// =====================
// GET /posts/:id（下書きの可視性）
// =====================

// 作者本人はtokenを付ければ自分の下書きを見られる
func TestGetPost_AuthorSeesOwnDraft(t *testing.T) {
	e, postRepo, userRepo, issuer := newPostServer()

	postRepo.On("FindByID", mock.Anything, "p1").Return(draftPost, nil)
	userRepo.On("FindByID", mock.Anything, "u1").Return(&model.User{
		ID: "u1", Role: model.RoleUser, IsActive: true,
	}, nil)

	signed, _, err := issuer.IssueAccess("u1", time.Now())
	assert.NoError(t, err)

	rec := getPost(e, "p1", signed)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "draft title")
}

// 未ログインには下書きは404（存在も漏らさない）
func TestGetPost_AnonymousCannotSeeDraft(t *testing.T) {
	e, postRepo, _, _ := newPostServer()

	postRepo.On("FindByID", mock.Anything, "p1").Return(draftPost, nil)

	rec := getPost(e, "p1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// 作者以外の一般ユーザーにも404
func TestGetPost_OtherUserCannotSeeDraft(t *testing.T) {
	e, postRepo, userRepo, issuer := newPostServer()

	postRepo.On("FindByID", mock.Anything, "p1").Return(draftPost, nil)
	userRepo.On("FindByID", mock.Anything, "u2").Return(&model.User{
		ID: "u2", Role: model.RoleUser, IsActive: true,
	}, nil)

	signed, _, err := issuer.IssueAccess("u2", time.Now())
	assert.NoError(t, err)

	rec := getPost(e, "p1", signed)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// 管理者は他人の下書きも見られる
func TestGetPost_AdminSeesAnyDraft(t *testing.T) {
	e, postRepo, userRepo, issuer := newPostServer()

	postRepo.On("FindByID", mock.Anything, "p1").Return(draftPost, nil)
	userRepo.On("FindByID", mock.Anything, "admin-1").Return(&model.User{
		ID: "admin-1", Role: model.RoleAdmin, IsActive: true,
	}, nil)

	signed, _, err := issuer.IssueAccess("admin-1", time.Now())
	assert.NoError(t, err)

	rec := getPost(e, "p1", signed)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// 公開済みは誰でも見られる
func TestGetPost_PublishedIsPublic(t *testing.T) {
	e, postRepo, _, _ := newPostServer()

	published := draftPost
	published.Published = true
	postRepo.On("FindByID", mock.Anything, "p1").Return(published, nil)

	rec := getPost(e, "p1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

// 壊れたtokenでも公開ルートは落とさない（匿名扱い）
func TestGetPost_GarbageTokenFallsBackToAnonymous(t *testing.T) {
	e, postRepo, _, _ := newPostServer()

	published := draftPost
	published.Published = true
	postRepo.On("FindByID", mock.Anything, "p1").Return(published, nil)

	rec := getPost(e, "p1", "garbage")

	assert.Equal(t, http.StatusOK, rec.Code)
}
