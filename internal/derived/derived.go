// Package derived は記事のタイトル・本文から導出されるフィールドを計算する純粋関数を提供する。
package derived

import (
	"math"
	"strings"
	"unicode"
)

// WordsPerMinute は読了時間の算出に使う1分あたりの単語数。
const WordsPerMinute = 200

// quoteRunes はスラッグ生成時に単語を分割せずに取り除く引用符。
const quoteRunes = "'\"“”‘’«»"

// Latin は小文字化後のASCII英字 a-z。
var Latin = &unicode.RangeTable{
	R16:         []unicode.Range16{{Lo: 'a', Hi: 'z', Stride: 1}},
	LatinOffset: 1,
}

// Cyrillic は小文字化後のキリル文字 а-я と ё。
var Cyrillic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 'а', Hi: 'я', Stride: 1},
		{Lo: 'ё', Hi: 'ё', Stride: 1},
	},
}

// Slugger はタイトルからURLセーフなスラッグを生成する。
// 文字クラスは設定可能で、数字は常に保持される。
type Slugger struct {
	letters []*unicode.RangeTable
}

// NewSlugger は指定した文字クラスを「単語」文字として保持するSluggerを生成する。
// 引数を省略した場合は Latin と Cyrillic を使う。
func NewSlugger(letters ...*unicode.RangeTable) *Slugger {
	if len(letters) == 0 {
		letters = []*unicode.RangeTable{Latin, Cyrillic}
	}
	return &Slugger{letters: letters}
}

var defaultSlugger = NewSlugger()

// Slug はデフォルトの文字クラスでスラッグを生成する。
func Slug(title string) string {
	return defaultSlugger.Slug(title)
}

// Slug はタイトルを小文字化し、引用符を除去し、許可外の文字を捨て、
// 空白の連続をハイフン1つにまとめ、連続ハイフンと前後のハイフンを取り除く。
// 出力をタイトルとして再入力しても同じ文字列になる（冪等）。
func (s *Slugger) Slug(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		switch {
		case strings.ContainsRune(quoteRunes, r):
			continue
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		case s.isWordRune(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *Slugger) isWordRune(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	return unicode.IsOneOf(s.letters, r)
}

// ReadingTime は本文を空白で分割した単語数から読了時間（分）を返す。
// ceil(単語数 / WordsPerMinute) で、最小値は1。
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
