package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	ex *query.Executor
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sqlx.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{ex: query.NewExecutor(db, TableCategories)}
}

// ListByName は全カテゴリを名前の昇順で返す。
func (r *PostgresCategoryRepo) ListByName(ctx context.Context) ([]*model.Category, error) {
	q, args := query.From(TableCategories).OrderBy("name", false).
		SelectSQL("id", "name", "description", "slug", "color", "color_active", "created_at")

	categories := []*model.Category{}
	if err := r.ex.Select(ctx, &categories, q, args...); err != nil {
		return nil, err
	}
	return categories, nil
}

// compile-time interface check
var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
