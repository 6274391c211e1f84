package handler

import (
	"net/http"
	"strconv"

	"app/internal/domain/model"
	mw "app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /posts のAPI。一覧と詳細は公開、作成・更新・削除は要ログイン。
type PostHandler struct {
	uc *usecase.PostUsecase
}

// DI
func NewPostHandler(uc *usecase.PostUsecase) *PostHandler {
	return &PostHandler{uc: uc}
}

// 一覧・詳細は未ログインでも見えるが、tokenがあれば本人として扱う
// （自分の下書きを見られるように）。
func (h *PostHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc, activeMW echo.MiddlewareFunc, optionalMW echo.MiddlewareFunc) {
	e.GET("/posts", h.list, optionalMW)
	e.GET("/posts/:id", h.detail, optionalMW)
	e.POST("/posts", h.create, authMW, activeMW)
	e.PUT("/posts/:id", h.update, authMW, activeMW)
	e.DELETE("/posts/:id", h.remove, authMW, activeMW)
}

func (h *PostHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListPublishedPosts(c.Request().Context(), usecase.ListPostsInput{
		Page:     page,
		Limit:    limit,
		Q:        c.QueryParam("q"),
		AuthorID: c.QueryParam("author_id"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PostHandler) detail(c echo.Context) error {
	//未ログインでも見える（下書きの可視判定はusecase側）
	viewerID, _ := mw.UserIDFrom(c)
	viewerRole, _ := mw.UserRoleFrom(c)

	p, err := h.uc.GetPostDetail(c.Request().Context(), c.Param("id"), viewerID, model.Role(viewerRole))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

type postRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

func (h *PostHandler) create(c echo.Context) error {
	userID, ok := mw.UserIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	p, err := h.uc.CreatePost(c.Request().Context(), userID, usecase.CreatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}, provenanceFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) update(c echo.Context) error {
	userID, ok := mw.UserIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	p, err := h.uc.UpdatePost(c.Request().Context(), userID, c.Param("id"), usecase.UpdatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *PostHandler) remove(c echo.Context) error {
	userID, ok := mw.UserIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, _ := mw.UserRoleFrom(c)

	if err := h.uc.DeletePost(c.Request().Context(), userID, model.Role(role), c.Param("id"), provenanceFrom(c)); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
