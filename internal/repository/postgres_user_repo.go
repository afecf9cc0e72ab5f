package repository

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	ex *query.Executor
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sqlx.DB) *PostgresUserRepo {
	return &PostgresUserRepo{ex: query.NewExecutor(db, TableUsers)}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, query.Eq(ColID, id))
}

// FindByEmail はメールアドレスの完全一致でユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, query.Eq("email", email))
}

func (r *PostgresUserRepo) findOne(ctx context.Context, cond query.Cond) (*model.User, error) {
	q, args := query.From(TableUsers).Where(cond).Page(1, 0).
		SelectSQL("id", "email", "password_hash", "created_at", "updated_at")

	user := &model.User{}
	found, err := r.ex.Get(ctx, user, q, args...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return user, nil
}

// Create はユーザーを作成し、保存された行を返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(TableUsers).
		Cols("id", "email", "password_hash", "created_at", "updated_at").
		Values(user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	q, args := ib.Build()

	created := &model.User{}
	if _, err := r.ex.Get(ctx, created, q+" RETURNING id, email, password_hash, created_at, updated_at", args...); err != nil {
		return nil, err
	}
	return created, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
