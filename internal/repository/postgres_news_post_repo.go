package repository

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
)

const newsPostReturning = " RETURNING id, title, text, created_date"

// PostgresNewsPostRepo はPostgreSQLを使用したnews_postsリポジトリ。
type PostgresNewsPostRepo struct {
	ex *query.Executor
}

// NewPostgresNewsPostRepo はPostgresNewsPostRepoを生成する。
func NewPostgresNewsPostRepo(db *sqlx.DB) *PostgresNewsPostRepo {
	return &PostgresNewsPostRepo{ex: query.NewExecutor(db, TableNewsPosts)}
}

// List は全件を作成日時の新しい順で返す。
func (r *PostgresNewsPostRepo) List(ctx context.Context) ([]*model.NewsPost, error) {
	q, args := query.From(TableNewsPosts).OrderBy("created_date", true).OrderBy(ColID, true).
		SelectSQL("id", "title", "text", "created_date")

	posts := []*model.NewsPost{}
	if err := r.ex.Select(ctx, &posts, q, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

// FindByID は指定IDの行を返す。見つからない場合はnilを返す。
func (r *PostgresNewsPostRepo) FindByID(ctx context.Context, id int64) (*model.NewsPost, error) {
	q, args := query.From(TableNewsPosts).Where(query.Eq(ColID, id)).
		SelectSQL("id", "title", "text", "created_date")
	return r.getOne(ctx, q, args)
}

// Create は行を追加し、採番されたIDを含む行を返す。
func (r *PostgresNewsPostRepo) Create(ctx context.Context, post *model.NewsPost) (*model.NewsPost, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(TableNewsPosts).
		Cols("title", "text", "created_date").
		Values(post.Title, post.Text, post.CreatedDate)
	q, args := ib.Build()
	return r.getOne(ctx, q+newsPostReturning, args)
}

// Update は指定されたフィールドのみ更新する。該当行がない場合はnilを返す。
func (r *PostgresNewsPostRepo) Update(ctx context.Context, id int64, title, text *string) (*model.NewsPost, error) {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(TableNewsPosts)
	var assigns []string
	if title != nil {
		assigns = append(assigns, ub.Assign("title", *title))
	}
	if text != nil {
		assigns = append(assigns, ub.Assign("text", *text))
	}
	if len(assigns) == 0 {
		return r.FindByID(ctx, id)
	}
	ub.Set(assigns...).Where(ub.Equal(ColID, id))
	q, args := ub.Build()
	return r.getOne(ctx, q+newsPostReturning, args)
}

// Delete は指定IDの行を削除し、削除件数を返す。
func (r *PostgresNewsPostRepo) Delete(ctx context.Context, id int64) (int64, error) {
	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(TableNewsPosts).Where(db.Equal(ColID, id))
	q, args := db.Build()
	return r.ex.Exec(ctx, q, args...)
}

func (r *PostgresNewsPostRepo) getOne(ctx context.Context, q string, args []interface{}) (*model.NewsPost, error) {
	post := &model.NewsPost{}
	found, err := r.ex.Get(ctx, post, q, args...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return post, nil
}

// compile-time interface check
var _ NewsPostRepository = (*PostgresNewsPostRepo)(nil)
