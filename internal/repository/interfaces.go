// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
)

// リレーション名
const (
	TableUsers      = "users"
	TablePosts      = "posts"
	TableCategories = "categories"
	TableNewsPosts  = "news_posts"
	TableVideos     = "videos"
)

// Postの条件に使うカラム名
const (
	ColID          = "id"
	ColAuthorID    = "author_id"
	ColIsPublished = "is_published"
	ColCategory    = "category"
	ColCreatedAt   = "created_at"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスの完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、保存された行を返す。
	// メールアドレスが重複する場合はCONFLICTを返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)
}

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// List はSpecの条件・並び順・ページ指定で記事を取得する。
	List(ctx context.Context, spec query.Spec) ([]*model.Post, error)

	// Count はSpecと同じ条件で記事数を返す。並び順とページ指定は無視する。
	Count(ctx context.Context, spec query.Spec) (int, error)

	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// FindByIDForUpdate は指定IDの記事を行ロック付きで取得する。WithTx内で使う。
	FindByIDForUpdate(ctx context.Context, id string) (*model.Post, error)

	// IncrementViews は公開中の記事のviews_countを1つ加算し、更新後の行を返す。
	// 公開中の該当記事がない場合はnilを返す。
	IncrementViews(ctx context.Context, id string) (*model.Post, error)

	// Create は記事を作成し、保存された行を返す。
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// UpdateOwned は id と author_id が一致する行を post の内容で更新し、更新後の行を返す。
	// 一致する行がない場合はnilを返す。
	UpdateOwned(ctx context.Context, post *model.Post) (*model.Post, error)

	// DeleteOwned は id と author_id が一致する行を削除し、削除件数を返す。
	DeleteOwned(ctx context.Context, id, authorID string) (int64, error)

	// Exists は指定IDの記事が存在するかを返す。
	Exists(ctx context.Context, id string) (bool, error)

	// WithTx はfnを1つのトランザクション内で実行する。
	WithTx(ctx context.Context, fn func(tx PostRepository) error) error
}

// CategoryRepository はカテゴリ参照データの読み取りインターフェース。
type CategoryRepository interface {
	// ListByName は全カテゴリを名前の昇順で返す。
	ListByName(ctx context.Context) ([]*model.Category, error)
}

// NewsPostRepository はデモ用newsPostsテーブルの永続化インターフェース。
type NewsPostRepository interface {
	List(ctx context.Context) ([]*model.NewsPost, error)
	FindByID(ctx context.Context, id int64) (*model.NewsPost, error)
	Create(ctx context.Context, post *model.NewsPost) (*model.NewsPost, error)
	Update(ctx context.Context, id int64, title, text *string) (*model.NewsPost, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// VideoRepository はデモ用videosテーブルの永続化インターフェース。
type VideoRepository interface {
	List(ctx context.Context, spec query.Spec) ([]*model.Video, error)
	SearchTitle(ctx context.Context, term string) ([]*model.Video, error)
	SumViewsByCategory(ctx context.Context) ([]*model.CategoryViews, error)
	FindByID(ctx context.Context, id int64) (*model.Video, error)
	Create(ctx context.Context, video *model.Video) (*model.Video, error)
	Update(ctx context.Context, id int64, title *string, views *int64, category *string) (*model.Video, error)
}
