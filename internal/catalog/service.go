// Package catalog はデモ用テーブル（news_posts, videos）の行操作を提供する。
// 所有者や可視性の概念はなく、cmd/blogctl から直接呼ばれる薄いサービス。
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
	"github.com/hitoshi/blogcore/internal/repository"
)

// デフォルト値
const (
	DefaultTop      = 5
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Service はデモ用テーブルのサービス。
type Service struct {
	news   repository.NewsPostRepository
	videos repository.VideoRepository
	now    func() time.Time
}

// NewService はServiceを生成する。
func NewService(news repository.NewsPostRepository, videos repository.VideoRepository) *Service {
	return &Service{news: news, videos: videos, now: time.Now}
}

// ListNews は全ニュースを作成日時の新しい順で返す。
func (s *Service) ListNews(ctx context.Context) ([]*model.NewsPost, error) {
	return s.news.List(ctx)
}

// GetNews は指定IDのニュースを返す。
func (s *Service) GetNews(ctx context.Context, id int64) (*model.NewsPost, error) {
	post, err := s.news.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, model.NewRowNotFoundError(repository.TableNewsPosts, id)
	}
	return post, nil
}

// InsertNews はニュースを追加する。作成日時は現在時刻。
func (s *Service) InsertNews(ctx context.Context, title, text *string) (*model.NewsPost, error) {
	if blank(title) || blank(text) {
		return nil, model.NewInvalidRequestError("--title と --text を指定してください。")
	}
	post, err := s.news.Create(ctx, &model.NewsPost{
		Title:       strings.TrimSpace(*title),
		Text:        strings.TrimSpace(*text),
		CreatedDate: s.now(),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("news post inserted", slog.Int64("id", post.ID))
	return post, nil
}

// UpdateNews は指定されたフィールドのみ更新する。少なくとも1つのフィールドが必要。
func (s *Service) UpdateNews(ctx context.Context, id int64, title, text *string) (*model.NewsPost, error) {
	if title == nil && text == nil {
		return nil, model.NewInvalidRequestError("更新するフィールドがありません（--title, --text）。")
	}
	if (title != nil && blank(title)) || (text != nil && blank(text)) {
		return nil, model.NewInvalidRequestError("空の値には更新できません。")
	}
	post, err := s.news.Update(ctx, id, title, text)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, model.NewRowNotFoundError(repository.TableNewsPosts, id)
	}
	return post, nil
}

// DeleteNews は指定IDのニュースを削除し、削除前の行を返す。
func (s *Service) DeleteNews(ctx context.Context, id int64) (*model.NewsPost, error) {
	existing, err := s.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.news.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.NewRowNotFoundError(repository.TableNewsPosts, id)
	}
	slog.Info("news post deleted", slog.Int64("id", id))
	return existing, nil
}

// ListVideos は全動画をID順で返す。
func (s *Service) ListVideos(ctx context.Context) ([]*model.Video, error) {
	return s.videos.List(ctx, query.From(repository.TableVideos).OrderBy(repository.ColID, false))
}

// FindVideos はタイトルの部分一致（大文字小文字を区別しない）で動画を返す。
func (s *Service) FindVideos(ctx context.Context, search string) ([]*model.Video, error) {
	return s.videos.SearchTitle(ctx, search)
}

// TopVideos は再生数の多い順に上位n件を返す。
func (s *Service) TopVideos(ctx context.Context, n int) ([]*model.Video, error) {
	if n <= 0 {
		return nil, model.NewInvalidRequestError("--top は1以上で指定してください。")
	}
	spec := query.From(repository.TableVideos).
		OrderBy("views", true).
		OrderBy(repository.ColID, false).
		Page(n, 0)
	return s.videos.List(ctx, spec)
}

// PaginateVideos はID順で1始まりのページを返す。
func (s *Service) PaginateVideos(ctx context.Context, page, size int) ([]*model.Video, error) {
	if page < 1 || size < 1 {
		return nil, model.NewInvalidRequestError("--page と --size は1以上で指定してください。")
	}
	spec := query.From(repository.TableVideos).
		OrderBy(repository.ColID, false).
		Page(size, (page-1)*size)
	return s.videos.List(ctx, spec)
}

// GroupVideos はカテゴリごとの再生数合計をカテゴリ名順で返す。
func (s *Service) GroupVideos(ctx context.Context) ([]*model.CategoryViews, error) {
	return s.videos.SumViewsByCategory(ctx)
}

// InsertVideo は動画を追加する。
func (s *Service) InsertVideo(ctx context.Context, title *string, views int64, category *string) (*model.Video, error) {
	if blank(title) || blank(category) {
		return nil, model.NewInvalidRequestError("--title, --views, --category を指定してください。")
	}
	if views < 0 {
		return nil, model.NewInvalidRequestError("--views は0以上で指定してください。")
	}
	video, err := s.videos.Create(ctx, &model.Video{
		Title:    strings.TrimSpace(*title),
		Views:    views,
		Category: strings.TrimSpace(*category),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("video inserted", slog.Int64("id", video.ID))
	return video, nil
}

// UpdateVideo は指定されたフィールドのみ更新する。
func (s *Service) UpdateVideo(ctx context.Context, id int64, title *string, views *int64, category *string) (*model.Video, error) {
	if title == nil && views == nil && category == nil {
		return nil, model.NewInvalidRequestError("更新するフィールドがありません（--title, --views, --category）。")
	}
	if (title != nil && blank(title)) || (category != nil && blank(category)) {
		return nil, model.NewInvalidRequestError("空の値には更新できません。")
	}
	if views != nil && *views < 0 {
		return nil, model.NewInvalidRequestError("--views は0以上で指定してください。")
	}
	video, err := s.videos.Update(ctx, id, title, views, category)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, model.NewRowNotFoundError(repository.TableVideos, id)
	}
	return video, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
