package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogcore/internal/middleware"
	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/post"
)

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context, params post.ListParams) (*model.PostPage, error)
	GetByID(ctx context.Context, id, callerID string) (*model.Post, error)
	Create(ctx context.Context, input model.PostInput, authorID string) (*model.Post, error)
	Update(ctx context.Context, id string, patch model.PostPatch, authorID string) (*model.Post, error)
	Delete(ctx context.Context, id, authorID string) error
	ListCategories(ctx context.Context) ([]*model.Category, error)
}

// PostHandler は記事とカテゴリのHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// postRequest は記事作成・更新リクエストのボディ。
// 更新時はnilのフィールドを変更しない。
type postRequest struct {
	Title           *string  `json:"title"`
	Content         *string  `json:"content"`
	Excerpt         *string  `json:"excerpt"`
	Image           *string  `json:"image"`
	Category        *string  `json:"category"`
	Tags            []string `json:"tags"`
	MetaTitle       *string  `json:"meta_title"`
	MetaDescription *string  `json:"meta_description"`
	IsPublished     *bool    `json:"is_published"`
	IsFeatured      *bool    `json:"is_featured"`
}

func (req postRequest) input() model.PostInput {
	in := model.PostInput{
		Excerpt:         req.Excerpt,
		Image:           req.Image,
		Category:        req.Category,
		Tags:            req.Tags,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		IsPublished:     req.IsPublished,
		IsFeatured:      req.IsFeatured,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Content != nil {
		in.Content = *req.Content
	}
	return in
}

func (req postRequest) patch() model.PostPatch {
	return model.PostPatch{
		Title:           req.Title,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Image:           req.Image,
		Category:        req.Category,
		Tags:            req.Tags,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		IsPublished:     req.IsPublished,
		IsFeatured:      req.IsFeatured,
	}
}

// ListPosts は閲覧可能な記事一覧を返す。
// GET /api/posts?page=0&size=10&category=xxx
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intQuery(q.Get("page"))
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("pageは整数で指定してください。"))
		return
	}
	size, err := intQuery(q.Get("size"))
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("sizeは整数で指定してください。"))
		return
	}

	params := post.ListParams{
		Page:     page,
		Size:     size,
		Category: q.Get("category"),
		CallerID: middleware.OptionalUserID(r.Context()),
	}

	result, err := h.service.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPostListResponse(result))
}

// GetPost は記事を1件返す。公開記事の場合は閲覧数が加算される。
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.GetByID(r.Context(), id, middleware.OptionalUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPostResponse(p))
}

// CreatePost は記事を作成する。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), req.input(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toPostResponse(p))
}

// UpdatePost は自分の記事を部分更新する。
// PUT /api/posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.patch(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPostResponse(p))
}

// DeletePost は自分の記事を削除する。
// DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories はカテゴリ一覧を名前順で返す。
// GET /api/categories
func (h *PostHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// intQuery は整数のクエリパラメータを解析する。空文字は0として扱う。
func intQuery(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
