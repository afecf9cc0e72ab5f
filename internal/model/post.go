// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/lib/pq"
)

// Post はユーザーが所有するブログ記事を表す。
// Slug と ReadingTime は Title / Content から導出される。
type Post struct {
	ID              string         `db:"id"`
	Title           string         `db:"title"`
	Content         string         `db:"content"`
	Excerpt         *string        `db:"excerpt"`
	Image           *string        `db:"image"`
	Category        *string        `db:"category"`
	Tags            pq.StringArray `db:"tags"`
	AuthorID        string         `db:"author_id"`
	IsPublished     bool           `db:"is_published"`
	IsFeatured      bool           `db:"is_featured"`
	ViewsCount      int            `db:"views_count"`
	LikesCount      int            `db:"likes_count"`
	Slug            string         `db:"slug"`
	MetaTitle       *string        `db:"meta_title"`
	MetaDescription *string        `db:"meta_description"`
	ReadingTime     int            `db:"reading_time"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	PublishedAt     *time.Time     `db:"published_at"`
}

// PostInput は記事作成時の入力。
// nilのフィールドはデフォルト値（公開: true、注目: false）で補完される。
type PostInput struct {
	Title           string
	Content         string
	Excerpt         *string
	Image           *string
	Category        *string
	Tags            []string
	MetaTitle       *string
	MetaDescription *string
	IsPublished     *bool
	IsFeatured      *bool
}

// PostPatch は記事更新時の部分更新入力。nilのフィールドは変更しない。
type PostPatch struct {
	Title           *string
	Content         *string
	Excerpt         *string
	Image           *string
	Category        *string
	Tags            []string
	MetaTitle       *string
	MetaDescription *string
	IsPublished     *bool
	IsFeatured      *bool
}

// Category は記事カテゴリの参照データ。マイグレーションで投入され読み取り専用。
type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Slug        *string   `db:"slug"`
	Color       *string   `db:"color"`
	ColorActive *string   `db:"color_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// Pagination はオフセット方式ページネーションのメタ情報。
// Pageは0始まり。
type Pagination struct {
	Page       int
	Size       int
	Total      int
	TotalPages int
}

// PostPage は記事一覧の1ページ分の結果。
type PostPage struct {
	Data       []*Post
	Pagination Pagination
}
