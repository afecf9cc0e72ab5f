package repository

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
)

var videoColumns = []string{"id", "title", "views", "category"}

const videoReturning = " RETURNING id, title, views, category"

// PostgresVideoRepo はPostgreSQLを使用したvideosリポジトリ。
type PostgresVideoRepo struct {
	ex *query.Executor
}

// NewPostgresVideoRepo はPostgresVideoRepoを生成する。
func NewPostgresVideoRepo(db *sqlx.DB) *PostgresVideoRepo {
	return &PostgresVideoRepo{ex: query.NewExecutor(db, TableVideos)}
}

// List はSpecに従って動画を返す。
func (r *PostgresVideoRepo) List(ctx context.Context, spec query.Spec) ([]*model.Video, error) {
	q, args := spec.SelectSQL(videoColumns...)

	videos := []*model.Video{}
	if err := r.ex.Select(ctx, &videos, q, args...); err != nil {
		return nil, err
	}
	return videos, nil
}

// SearchTitle はタイトルの部分一致（大文字小文字を区別しない）で動画を返す。
func (r *PostgresVideoRepo) SearchTitle(ctx context.Context, term string) ([]*model.Video, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(videoColumns...).
		From(TableVideos).
		Where(sb.ILike("title", "%"+term+"%")).
		OrderBy(ColID)
	q, args := sb.Build()

	videos := []*model.Video{}
	if err := r.ex.Select(ctx, &videos, q, args...); err != nil {
		return nil, err
	}
	return videos, nil
}

// SumViewsByCategory はカテゴリごとの再生数合計を返す。
func (r *PostgresVideoRepo) SumViewsByCategory(ctx context.Context) ([]*model.CategoryViews, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("category", sb.As("COALESCE(SUM(views), 0)", "total_views")).
		From(TableVideos).
		GroupBy("category").
		OrderBy("category")
	q, args := sb.Build()

	rows := []*model.CategoryViews{}
	if err := r.ex.Select(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID は指定IDの動画を返す。見つからない場合はnilを返す。
func (r *PostgresVideoRepo) FindByID(ctx context.Context, id int64) (*model.Video, error) {
	q, args := query.From(TableVideos).Where(query.Eq(ColID, id)).SelectSQL(videoColumns...)
	return r.getOne(ctx, q, args)
}

// Create は動画を追加し、採番されたIDを含む行を返す。
func (r *PostgresVideoRepo) Create(ctx context.Context, video *model.Video) (*model.Video, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(TableVideos).
		Cols("title", "views", "category").
		Values(video.Title, video.Views, video.Category)
	q, args := ib.Build()
	return r.getOne(ctx, q+videoReturning, args)
}

// Update は指定されたフィールドのみ更新する。該当行がない場合はnilを返す。
func (r *PostgresVideoRepo) Update(ctx context.Context, id int64, title *string, views *int64, category *string) (*model.Video, error) {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(TableVideos)
	var assigns []string
	if title != nil {
		assigns = append(assigns, ub.Assign("title", *title))
	}
	if views != nil {
		assigns = append(assigns, ub.Assign("views", *views))
	}
	if category != nil {
		assigns = append(assigns, ub.Assign("category", *category))
	}
	if len(assigns) == 0 {
		return r.FindByID(ctx, id)
	}
	ub.Set(assigns...).Where(ub.Equal(ColID, id))
	q, args := ub.Build()
	return r.getOne(ctx, q+videoReturning, args)
}

func (r *PostgresVideoRepo) getOne(ctx context.Context, q string, args []interface{}) (*model.Video, error) {
	video := &model.Video{}
	found, err := r.ex.Get(ctx, video, q, args...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return video, nil
}

// compile-time interface check
var _ VideoRepository = (*PostgresVideoRepo)(nil)
