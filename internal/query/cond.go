// Package query はクエリ条件・クエリ仕様の不変な値型と、
// 名前付きリレーションに対するクエリ実行器を提供する。
package query

import "strings"

type condKind int

const (
	condAll condKind = iota
	condEq
	condAnd
	condOr
)

// Cond はWHERE句を表すタグ付き条件木。
// 値型であり、組み合わせ操作は引数を変更せず新しい木を返す。
// 同じCondからページ取得クエリと件数クエリを描画することで両者の条件一致を保証する。
type Cond struct {
	kind     condKind
	field    string
	value    any
	children []Cond
}

// CondBuilder はgo-sqlbuilderの各ビルダーが持つ条件生成メソッドの部分集合。
// SelectBuilder / UpdateBuilder / DeleteBuilder のいずれも満たす。
type CondBuilder interface {
	Equal(field string, value interface{}) string
	Or(orExpr ...string) string
}

// All は絞り込みなし（常に真）の条件を返す。
func All() Cond {
	return Cond{kind: condAll}
}

// Eq は field = value の条件を返す。
func Eq(field string, value any) Cond {
	return Cond{kind: condEq, field: field, value: value}
}

// And は全ての条件を満たす条件を返す。All は単位元として取り除かれる。
func And(conds ...Cond) Cond {
	return combine(condAnd, conds)
}

// Or はいずれかの条件を満たす条件を返す。
// 子にAllが含まれる場合は全体がAllになる。
func Or(conds ...Cond) Cond {
	for _, c := range conds {
		if c.kind == condAll {
			return All()
		}
	}
	return combine(condOr, conds)
}

func combine(kind condKind, conds []Cond) Cond {
	children := make([]Cond, 0, len(conds))
	for _, c := range conds {
		if c.kind == condAll {
			continue
		}
		children = append(children, c)
	}
	switch len(children) {
	case 0:
		return All()
	case 1:
		return children[0]
	}
	return Cond{kind: kind, children: children}
}

// And はレシーバと other の論理積を返す。
func (c Cond) And(other Cond) Cond {
	return And(c, other)
}

// IsAll は絞り込みなしの条件かどうかを返す。
func (c Cond) IsAll() bool {
	return c.kind == condAll
}

// Render はビルダーのプレースホルダを使って条件式を描画する。
// Allの場合は空文字列を返す。
func (c Cond) Render(b CondBuilder) string {
	switch c.kind {
	case condEq:
		return b.Equal(c.field, c.value)
	case condAnd:
		parts := make([]string, len(c.children))
		for i, child := range c.children {
			parts[i] = child.Render(b)
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	case condOr:
		parts := make([]string, len(c.children))
		for i, child := range c.children {
			parts[i] = child.Render(b)
		}
		return b.Or(parts...)
	default:
		return ""
	}
}

// Match は行のフィールド取得関数に対して条件を評価する。
// インメモリのリポジトリ実装がSQLと同じ条件木を評価するために使う。
// getが nil を返すフィールド（SQLのNULL）はどの値とも一致しない。
func (c Cond) Match(get func(field string) any) bool {
	switch c.kind {
	case condEq:
		v := get(c.field)
		if v == nil {
			return false
		}
		return v == c.value
	case condAnd:
		for _, child := range c.children {
			if !child.Match(get) {
				return false
			}
		}
		return true
	case condOr:
		for _, child := range c.children {
			if child.Match(get) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
