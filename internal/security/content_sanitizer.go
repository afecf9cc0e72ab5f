// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は記事本文・抜粋として投稿されたHTMLをサニタイズする。
// bluemondayの許可リストポリシーで、記事の表示に必要なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
// 記事の作成・更新時、保存前に本文と抜粋へ適用される。
type ContentSanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemonday.Policyはゴルーチン間で共有してよい。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer は記事用ポリシーを持つサニタイザーを生成する。
//   - 許可タグ: p, br, hr, h2〜h4, ul, ol, li, blockquote, pre, code, strong, em, a, img
//   - script, iframe, style と on*属性は除去
//   - a: href（絶対URLのみ）、target="_blank" と rel="noopener noreferrer" を付与
//   - img: src は https のみ、alt を許可
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr",
		"h2", "h3", "h4",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}

// SanitizeOptional はnilを保ったままサニタイズする。
func SanitizeOptional(s ContentSanitizerService, raw *string) *string {
	if raw == nil {
		return nil
	}
	clean := s.Sanitize(*raw)
	return &clean
}
