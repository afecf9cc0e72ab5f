package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/hitoshi/blogcore/internal/middleware"
	"github.com/hitoshi/blogcore/internal/model"
)

// --- レスポンス型 ---

// userResponse は公開ユーザー情報のレスポンス。パスワードハッシュは含まない。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// authResponse は登録・ログイン成功時のレスポンス。
type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// postResponse は記事のレスポンス。
type postResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Excerpt         *string    `json:"excerpt"`
	Image           *string    `json:"image"`
	Category        *string    `json:"category"`
	Tags            []string   `json:"tags"`
	AuthorID        string     `json:"author_id"`
	IsPublished     bool       `json:"is_published"`
	IsFeatured      bool       `json:"is_featured"`
	ViewsCount      int        `json:"views_count"`
	LikesCount      int        `json:"likes_count"`
	Slug            string     `json:"slug"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	ReadingTime     int        `json:"reading_time"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at"`
}

// paginationResponse はページネーション情報のレスポンス。
type paginationResponse struct {
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// postListResponse は記事一覧のレスポンス。
type postListResponse struct {
	Data       []postResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// categoryResponse はカテゴリのレスポンス。
type categoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Slug        *string   `json:"slug"`
	Color       *string   `json:"color"`
	ColorActive *string   `json:"color_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u model.PublicUser) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toAuthResponse(res *model.AuthResult) authResponse {
	return authResponse{
		Token: res.Token,
		User:  toUserResponse(res.User),
	}
}

func toPostResponse(p *model.Post) postResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return postResponse{
		ID:              p.ID,
		Title:           p.Title,
		Content:         p.Content,
		Excerpt:         p.Excerpt,
		Image:           p.Image,
		Category:        p.Category,
		Tags:            tags,
		AuthorID:        p.AuthorID,
		IsPublished:     p.IsPublished,
		IsFeatured:      p.IsFeatured,
		ViewsCount:      p.ViewsCount,
		LikesCount:      p.LikesCount,
		Slug:            p.Slug,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		ReadingTime:     p.ReadingTime,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		PublishedAt:     p.PublishedAt,
	}
}

func toPostListResponse(page *model.PostPage) postListResponse {
	data := make([]postResponse, len(page.Data))
	for i, p := range page.Data {
		data[i] = toPostResponse(p)
	}
	return postListResponse{
		Data: data,
		Pagination: paginationResponse{
			Page:       page.Pagination.Page,
			Size:       page.Pagination.Size,
			Total:      page.Pagination.Total,
			TotalPages: page.Pagination.TotalPages,
		},
	}
}

func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Slug:        c.Slug,
		Color:       c.Color,
		ColorActive: c.ColorActive,
		CreatedAt:   c.CreatedAt,
	}
}

// --- 共通ヘルパー ---

// writeJSON はステータスコードを指定してJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// decodeJSON はリクエストボディをJSONとして読み込む。
// 解析に失敗した場合は400を書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return false
	}
	return true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteError(w, r, err)
}

// requireUserID は認証済みユーザーIDを取り出す。
// 認証ミドルウェアの外で呼ばれた場合は401を書き込みfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return "", false
	}
	return userID, true
}
