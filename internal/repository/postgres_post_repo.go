package repository

import (
	"context"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
)

// postColumns はpostsテーブルの全カラム。SELECTとRETURNINGで共通に使う。
var postColumns = []string{
	"id", "title", "content", "excerpt", "image", "category", "tags",
	"author_id", "is_published", "is_featured", "views_count", "likes_count",
	"slug", "meta_title", "meta_description", "reading_time",
	"created_at", "updated_at", "published_at",
}

// PostgresPostRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresPostRepo struct {
	ex *query.Executor
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sqlx.DB) *PostgresPostRepo {
	return &PostgresPostRepo{ex: query.NewExecutor(db, TablePosts)}
}

// List はSpecの条件・並び順・ページ指定で記事を取得する。
func (r *PostgresPostRepo) List(ctx context.Context, spec query.Spec) ([]*model.Post, error) {
	q, args := spec.SelectSQL(postColumns...)

	posts := []*model.Post{}
	if err := r.ex.Select(ctx, &posts, q, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

// Count はSpecと同じ条件で記事数を返す。
func (r *PostgresPostRepo) Count(ctx context.Context, spec query.Spec) (int, error) {
	return r.ex.Count(ctx, spec)
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	q, args := query.From(TablePosts).Where(query.Eq(ColID, id)).SelectSQL(postColumns...)
	return r.getOne(ctx, q, args)
}

// FindByIDForUpdate は指定IDの記事を行ロック付きで取得する。
func (r *PostgresPostRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Post, error) {
	q, args := query.From(TablePosts).Where(query.Eq(ColID, id)).SelectSQL(postColumns...)
	return r.getOne(ctx, q+" FOR UPDATE", args)
}

// IncrementViews は公開中の記事のviews_countを1つ加算し、更新後の行を返す。
// 読み取りと加算を1文で行うため、同時アクセスでも加算が失われない。
func (r *PostgresPostRepo) IncrementViews(ctx context.Context, id string) (*model.Post, error) {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(TablePosts).
		Set(ub.Incr("views_count")).
		Where(query.And(query.Eq(ColID, id), query.Eq(ColIsPublished, true)).Render(ub))
	q, args := ub.Build()
	return r.getOne(ctx, q+returning(), args)
}

// Create は記事を作成し、保存された行を返す。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(TablePosts).
		Cols(postColumns...).
		Values(
			post.ID, post.Title, post.Content, post.Excerpt, post.Image, post.Category, post.Tags,
			post.AuthorID, post.IsPublished, post.IsFeatured, post.ViewsCount, post.LikesCount,
			post.Slug, post.MetaTitle, post.MetaDescription, post.ReadingTime,
			post.CreatedAt, post.UpdatedAt, post.PublishedAt,
		)
	q, args := ib.Build()
	return r.getOne(ctx, q+returning(), args)
}

// UpdateOwned は id と author_id が一致する行を post の内容で更新する。
// 所有者の照合を更新文の条件に含めるため、確認と更新の間に所有者が変わっても他人の行は更新されない。
func (r *PostgresPostRepo) UpdateOwned(ctx context.Context, post *model.Post) (*model.Post, error) {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(TablePosts).
		Set(
			ub.Assign("title", post.Title),
			ub.Assign("content", post.Content),
			ub.Assign("excerpt", post.Excerpt),
			ub.Assign("image", post.Image),
			ub.Assign("category", post.Category),
			ub.Assign("tags", post.Tags),
			ub.Assign("is_published", post.IsPublished),
			ub.Assign("is_featured", post.IsFeatured),
			ub.Assign("slug", post.Slug),
			ub.Assign("meta_title", post.MetaTitle),
			ub.Assign("meta_description", post.MetaDescription),
			ub.Assign("reading_time", post.ReadingTime),
			ub.Assign("updated_at", post.UpdatedAt),
			ub.Assign("published_at", post.PublishedAt),
		).
		Where(query.And(query.Eq(ColID, post.ID), query.Eq(ColAuthorID, post.AuthorID)).Render(ub))
	q, args := ub.Build()
	return r.getOne(ctx, q+returning(), args)
}

// DeleteOwned は id と author_id が一致する行を削除し、削除件数を返す。
func (r *PostgresPostRepo) DeleteOwned(ctx context.Context, id, authorID string) (int64, error) {
	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(TablePosts).
		Where(query.And(query.Eq(ColID, id), query.Eq(ColAuthorID, authorID)).Render(db))
	q, args := db.Build()
	return r.ex.Exec(ctx, q, args...)
}

// Exists は指定IDの記事が存在するかを返す。
func (r *PostgresPostRepo) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.ex.Count(ctx, query.From(TablePosts).Where(query.Eq(ColID, id)))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WithTx はfnを1つのトランザクション内で実行する。
func (r *PostgresPostRepo) WithTx(ctx context.Context, fn func(tx PostRepository) error) error {
	return r.ex.InTx(ctx, func(tx *query.Executor) error {
		return fn(&PostgresPostRepo{ex: tx})
	})
}

func (r *PostgresPostRepo) getOne(ctx context.Context, q string, args []interface{}) (*model.Post, error) {
	post := &model.Post{}
	found, err := r.ex.Get(ctx, post, q, args...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return post, nil
}

func returning() string {
	return " RETURNING " + strings.Join(postColumns, ", ")
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
