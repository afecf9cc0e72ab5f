// Package post は記事の可視性・所有者チェック付きCRUDとページネーションを提供する。
package post

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/blogcore/internal/derived"
	"github.com/hitoshi/blogcore/internal/metrics"
	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
	"github.com/hitoshi/blogcore/internal/repository"
	"github.com/hitoshi/blogcore/internal/security"
)

// ページサイズのデフォルト値
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ServiceConfig は記事サービスの設定。
type ServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// ListParams は記事一覧の取得条件。CallerIDが空の場合は未認証として扱う。
type ListParams struct {
	Page     int
	Size     int
	Category string
	CallerID string
}

// Service は記事に関するビジネスロジックを提供する。
type Service struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	sanitizer  security.ContentSanitizerService
	slugger    *derived.Slugger
	metrics    metrics.MetricsCollector
	config     ServiceConfig
	now        func() time.Time
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = DefaultPageSize
	}
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = MaxPageSize
	}
	if config.DefaultPageSize > config.MaxPageSize {
		config.DefaultPageSize = config.MaxPageSize
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		posts:      posts,
		categories: categories,
		sanitizer:  sanitizer,
		slugger:    derived.NewSlugger(),
		metrics:    collector,
		config:     config,
		now:        time.Now,
	}
}

// VisibilityCond は呼び出し元が閲覧できる記事の条件を返す。
// 未認証なら公開記事のみ、認証済みなら公開記事と自分の非公開記事。
func VisibilityCond(callerID string) query.Cond {
	published := query.Eq(repository.ColIsPublished, true)
	if callerID == "" {
		return published
	}
	return query.Or(
		published,
		query.And(
			query.Eq(repository.ColIsPublished, false),
			query.Eq(repository.ColAuthorID, callerID),
		),
	)
}

// List は可視性条件とカテゴリで絞り込んだ記事をcreated_at降順で返す。
// 件数は同じ条件からの別クエリで数えるため、返却ページの内容には依存しない。
func (s *Service) List(ctx context.Context, params ListParams) (*model.PostPage, error) {
	page, size := s.normalizePage(params.Page, params.Size)

	cond := VisibilityCond(params.CallerID)
	if params.Category != "" {
		cond = cond.And(query.Eq(repository.ColCategory, params.Category))
	}
	base := query.From(repository.TablePosts).Where(cond)

	total, err := s.posts.Count(ctx, base)
	if err != nil {
		return nil, err
	}

	data, err := s.posts.List(ctx, base.
		OrderBy(repository.ColCreatedAt, true).
		OrderBy(repository.ColID, true).
		Page(size, page*size))
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}

	return &model.PostPage{
		Data: data,
		Pagination: model.Pagination{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *Service) normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = s.config.DefaultPageSize
	}
	if size > s.config.MaxPageSize {
		size = s.config.MaxPageSize
	}
	// page*size がオフセットとしてintに収まる範囲に抑える
	if maxPage := math.MaxInt32 / size; page > maxPage {
		page = maxPage
	}
	return page, size
}

// GetByID は記事を返す。非公開記事を所有者以外が参照した場合も NOT_FOUND とする。
// 公開記事の取得に成功した場合は閲覧数を1加算し、加算後の値を返す。
func (s *Service) GetByID(ctx context.Context, id, callerID string) (*model.Post, error) {
	if !validID(id) {
		return nil, model.NewPostNotFoundError(id)
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}

	if !post.IsPublished {
		if callerID == "" || callerID != post.AuthorID {
			return nil, model.NewPostNotFoundError(id)
		}
		return post, nil
	}

	viewed, err := s.posts.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewed == nil {
		// 取得から加算までの間に削除または非公開化された
		return nil, model.NewPostNotFoundError(id)
	}

	s.metrics.RecordPostView()
	return viewed, nil
}

// Create は記事を作成する。slugとreading_timeはタイトルと本文から導出する。
func (s *Service) Create(ctx context.Context, input model.PostInput, authorID string) (*model.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewInvalidRequestError("タイトルを指定してください。")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, model.NewInvalidRequestError("本文を指定してください。")
	}
	slug, err := s.slugFor(input.Title)
	if err != nil {
		return nil, err
	}

	content := s.sanitizer.Sanitize(input.Content)
	now := s.now()

	post := &model.Post{
		ID:              uuid.New().String(),
		Title:           input.Title,
		Content:         content,
		Excerpt:         security.SanitizeOptional(s.sanitizer, input.Excerpt),
		Image:           input.Image,
		Category:        input.Category,
		Tags:            tagsOf(input.Tags),
		AuthorID:        authorID,
		IsPublished:     boolOr(input.IsPublished, true),
		IsFeatured:      boolOr(input.IsFeatured, false),
		Slug:            slug,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		ReadingTime:     derived.ReadingTime(content),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if post.IsPublished {
		post.PublishedAt = &now
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPostWrite(metrics.OpCreate)
	slog.Info("post created",
		slog.String("post_id", created.ID),
		slog.String("author_id", authorID),
		slog.String("slug", created.Slug),
	)
	return created, nil
}

// Update は所有者による記事の部分更新を行う。
// 行ロックを取った上で保存済みの author_id と照合し、
// タイトル・本文が実際に変わった場合のみ slug・reading_time を再計算する。
func (s *Service) Update(ctx context.Context, id string, patch model.PostPatch, authorID string) (*model.Post, error) {
	if !validID(id) {
		return nil, model.NewPostNotFoundError(id)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, model.NewInvalidRequestError("タイトルを空にはできません。")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, model.NewInvalidRequestError("本文を空にはできません。")
	}

	var updated *model.Post
	err := s.posts.WithTx(ctx, func(tx repository.PostRepository) error {
		current, err := tx.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewPostNotFoundError(id)
		}
		if current.AuthorID != authorID {
			return model.NewUnauthorizedError("更新")
		}

		next, err := s.applyPatch(current, patch)
		if err != nil {
			return err
		}

		updated, err = tx.UpdateOwned(ctx, next)
		if err != nil {
			return err
		}
		if updated == nil {
			return model.NewPostNotFoundError(id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPostWrite(metrics.OpUpdate)
	slog.Info("post updated",
		slog.String("post_id", id),
		slog.String("author_id", authorID),
	)
	return updated, nil
}

func (s *Service) applyPatch(current *model.Post, patch model.PostPatch) (*model.Post, error) {
	next := *current
	now := s.now()

	if patch.Title != nil && *patch.Title != current.Title {
		slug, err := s.slugFor(*patch.Title)
		if err != nil {
			return nil, err
		}
		next.Title = *patch.Title
		next.Slug = slug
	}
	if patch.Content != nil {
		content := s.sanitizer.Sanitize(*patch.Content)
		if content != current.Content {
			next.Content = content
			next.ReadingTime = derived.ReadingTime(content)
		}
	}
	if patch.Excerpt != nil {
		next.Excerpt = security.SanitizeOptional(s.sanitizer, patch.Excerpt)
	}
	if patch.Image != nil {
		next.Image = patch.Image
	}
	if patch.Category != nil {
		next.Category = patch.Category
	}
	if patch.Tags != nil {
		next.Tags = tagsOf(patch.Tags)
	}
	if patch.MetaTitle != nil {
		next.MetaTitle = patch.MetaTitle
	}
	if patch.MetaDescription != nil {
		next.MetaDescription = patch.MetaDescription
	}
	if patch.IsFeatured != nil {
		next.IsFeatured = *patch.IsFeatured
	}
	if patch.IsPublished != nil {
		next.IsPublished = *patch.IsPublished
		if next.IsPublished && current.PublishedAt == nil {
			next.PublishedAt = &now
		}
	}

	next.UpdatedAt = now
	return &next, nil
}

// Delete は所有者による記事の削除を行う。
// 削除件数が0の場合のみ存在確認を行い、NOT_FOUND と UNAUTHORIZED を区別する。
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	if !validID(id) {
		return model.NewPostNotFoundError(id)
	}
	n, err := s.posts.DeleteOwned(ctx, id, authorID)
	if err != nil {
		return err
	}
	if n == 0 {
		exists, err := s.posts.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return model.NewPostNotFoundError(id)
		}
		return model.NewUnauthorizedError("削除")
	}

	s.metrics.RecordPostWrite(metrics.OpDelete)
	slog.Info("post deleted",
		slog.String("post_id", id),
		slog.String("author_id", authorID),
	)
	return nil
}

// ListCategories は全カテゴリを名前の昇順で返す。
func (s *Service) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categories.ListByName(ctx)
}

func (s *Service) slugFor(title string) (string, error) {
	slug := s.slugger.Slug(title)
	if slug == "" {
		return "", model.NewInvalidRequestError("タイトルには英数字を1文字以上含めてください。")
	}
	return slug, nil
}

// validID は記事IDとして保存され得る値か（UUID形式か）を返す。
// 形式外のIDはどの行とも一致しないため、問い合わせずに NOT_FOUND とする。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func tagsOf(tags []string) pq.StringArray {
	if tags == nil {
		return nil
	}
	out := make(pq.StringArray, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
