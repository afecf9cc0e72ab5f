package query

import "github.com/huandu/go-sqlbuilder"

// Order はソート順の指定。
type Order struct {
	Field string
	Desc  bool
}

// Spec はリレーションに対するSELECTの不変な仕様。
// 絞り込み・並び替え・ページ指定はすべてコピーを返すため、
// 件数クエリとページ取得クエリの間でビルダー状態が共有されることはない。
type Spec struct {
	table  string
	cond   Cond
	orders []Order
	limit  int
	offset int
}

// From は指定リレーションを対象とする絞り込みなしのSpecを返す。
func From(table string) Spec {
	return Spec{table: table, cond: All()}
}

// Where は既存の条件との論理積をとったSpecを返す。
func (s Spec) Where(c Cond) Spec {
	s.cond = s.cond.And(c)
	return s
}

// OrderBy はソート順を追加したSpecを返す。
func (s Spec) OrderBy(field string, desc bool) Spec {
	orders := make([]Order, len(s.orders), len(s.orders)+1)
	copy(orders, s.orders)
	s.orders = append(orders, Order{Field: field, Desc: desc})
	return s
}

// Page はLIMIT/OFFSETを設定したSpecを返す。0以下の値は指定なしとして扱う。
func (s Spec) Page(limit, offset int) Spec {
	s.limit = limit
	s.offset = offset
	return s
}

// Table は対象リレーション名を返す。
func (s Spec) Table() string { return s.table }

// Cond は絞り込み条件を返す。
func (s Spec) Cond() Cond { return s.cond }

// Orders はソート順のコピーを返す。
func (s Spec) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Limit はLIMIT値を返す。
func (s Spec) Limit() int { return s.limit }

// Offset はOFFSET値を返す。
func (s Spec) Offset() int { return s.offset }

// SelectSQL はPostgreSQL方言のSELECT文と引数を返す。
func (s Spec) SelectSQL(cols ...string) (string, []interface{}) {
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(cols...).From(s.table)
	if expr := s.cond.Render(sb); expr != "" {
		sb.Where(expr)
	}
	for _, o := range s.orders {
		if o.Desc {
			sb.OrderBy(o.Field + " DESC")
		} else {
			sb.OrderBy(o.Field + " ASC")
		}
	}
	if s.limit > 0 {
		sb.Limit(s.limit)
	}
	if s.offset > 0 {
		sb.Offset(s.offset)
	}
	return sb.Build()
}

// CountSQL は同じ条件での件数取得文を返す。ソートとページ指定は無視する。
func (s Spec) CountSQL() (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)").From(s.table)
	if expr := s.cond.Render(sb); expr != "" {
		sb.Where(expr)
	}
	return sb.Build()
}
