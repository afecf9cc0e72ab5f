package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hitoshi/blogcore/internal/model"
)

// Executor は名前付きリレーションに対するクエリを実行し、
// 失敗をすべて model.APIError（QUERY_FAILED / CONFLICT）に正規化する。
// ドライバ固有のエラー型は呼び出し元に漏らさない。リトライは行わない。
type Executor struct {
	db       *sqlx.DB
	ext      sqlx.ExtContext
	relation string
	inTx     bool
}

// NewExecutor は指定リレーション用のExecutorを生成する。
func NewExecutor(db *sqlx.DB, relation string) *Executor {
	return &Executor{db: db, ext: db, relation: relation}
}

// Relation は対象リレーション名を返す。
func (e *Executor) Relation() string {
	return e.relation
}

// For は同じ接続（トランザクション内ならそのトランザクション）で別リレーションを扱うExecutorを返す。
func (e *Executor) For(relation string) *Executor {
	return &Executor{db: e.db, ext: e.ext, relation: relation, inTx: e.inTx}
}

// Get は1行を取得してdestにスキャンする。
// 行が存在しない場合はエラーではなく false を返す。
func (e *Executor) Get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := sqlx.GetContext(ctx, e.ext, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, e.normalize(err)
	}
	return true, nil
}

// Select は複数行を取得してdest（スライスへのポインタ）にスキャンする。
func (e *Executor) Select(ctx context.Context, dest any, query string, args ...any) error {
	if err := sqlx.SelectContext(ctx, e.ext, dest, query, args...); err != nil {
		return e.normalize(err)
	}
	return nil
}

// Exec は更新系クエリを実行し、影響行数を返す。
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := e.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, e.normalize(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, e.normalize(err)
	}
	return n, nil
}

// Count はSpecと同じ条件で件数を数える。
func (e *Executor) Count(ctx context.Context, spec Spec) (int, error) {
	q, args := spec.CountSQL()
	var n int
	if _, err := e.Get(ctx, &n, q, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// InTx はfnを1つのトランザクション内で実行する。
// fnがエラーを返した場合はロールバックする。既にトランザクション内ならそのまま実行する。
func (e *Executor) InTx(ctx context.Context, fn func(tx *Executor) error) error {
	if e.inTx {
		return fn(e)
	}

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return e.normalize(err)
	}
	defer tx.Rollback()

	if err := fn(&Executor{db: e.db, ext: tx, relation: e.relation, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return e.normalize(err)
	}
	return nil
}

// normalize はドライバエラーをAPIErrorに変換する。
// 一意制約違反はCONFLICT、それ以外はQUERY_FAILEDとし、元の型は保持しない。
func (e *Executor) normalize(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return model.NewConflictError("同じ値を持つレコードが既に存在します。")
	}

	return model.NewQueryFailedError(fmt.Sprintf("%s: %s", e.relation, err.Error()))
}
