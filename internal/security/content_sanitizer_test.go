package security

import (
	"strings"
	"testing"
)

type sanitizeCase struct {
	name   string
	input  string
	keep   []string
	remove []string
}

func runSanitizeCases(t *testing.T, cases []sanitizeCase) {
	t.Helper()
	sanitizer := NewContentSanitizer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tc.input)
			for _, s := range tc.keep {
				if !strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, want it to keep %q", tc.input, got, s)
				}
			}
			for _, s := range tc.remove {
				if strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, want %q removed", tc.input, got, s)
				}
			}
		})
	}
}

// 記事本文で使う構造タグは残る。
func TestSanitize_ArticleStructureKept(t *testing.T) {
	runSanitizeCases(t, []sanitizeCase{
		{name: "段落", input: "<p>はじめに</p>", keep: []string{"<p>はじめに</p>"}},
		{name: "改行", input: "一行目<br>二行目", keep: []string{"<br", "一行目", "二行目"}},
		{name: "区切り線", input: "<p>a</p><hr><p>b</p>", keep: []string{"<hr"}},
		{name: "小見出し", input: "<h2>背景</h2><h3>詳細</h3><h4>補足</h4>", keep: []string{"<h2>背景</h2>", "<h3>詳細</h3>", "<h4>補足</h4>"}},
		{name: "箇条書き", input: "<ul><li>Go</li><li>SQL</li></ul>", keep: []string{"<ul><li>Go</li><li>SQL</li></ul>"}},
		{name: "番号付きリスト", input: "<ol><li>install</li></ol>", keep: []string{"<ol><li>install</li></ol>"}},
		{name: "引用", input: "<blockquote>Less is more.</blockquote>", keep: []string{"<blockquote>Less is more.</blockquote>"}},
		{name: "コードブロック", input: "<pre><code>go test ./...</code></pre>", keep: []string{"<pre><code>go test ./...</code></pre>"}},
		{name: "強調", input: "<strong>重要</strong>と<em>補足</em>", keep: []string{"<strong>重要</strong>", "<em>補足</em>"}},
	})
}

// 許可リスト外のタグは除去され、テキストは残る。
func TestSanitize_DisallowedElementsStripped(t *testing.T) {
	runSanitizeCases(t, []sanitizeCase{
		{name: "h1はタイトル専用", input: "<h1>記事タイトル</h1>", keep: []string{"記事タイトル"}, remove: []string{"<h1"}},
		{name: "script", input: "<p>本文</p><script>alert(1)</script>", keep: []string{"<p>本文</p>"}, remove: []string{"<script", "alert"}},
		{name: "iframe埋め込み", input: `<iframe src="https://evil.example"></iframe>`, remove: []string{"<iframe", "evil.example"}},
		{name: "style", input: "<style>body{display:none}</style><p>x</p>", keep: []string{"<p>x</p>"}, remove: []string{"<style", "display:none"}},
		{name: "form", input: `<form action="https://evil.example"><input name="pw"></form>`, remove: []string{"<form", "<input"}},
		{name: "インラインstyle属性", input: `<p style="color:red">赤</p>`, keep: []string{"赤"}, remove: []string{"style="}},
	})
}

// on*属性とスクリプトURLは無害化される。
func TestSanitize_ScriptVectors(t *testing.T) {
	runSanitizeCases(t, []sanitizeCase{
		{name: "onclick", input: `<p onclick="steal()">押す</p>`, keep: []string{"押す"}, remove: []string{"onclick", "steal"}},
		{name: "onerror付きimg", input: `<img src="https://cdn.example/a.png" onerror="steal()">`, remove: []string{"onerror", "steal"}},
		{name: "onmouseover付きリンク", input: `<a href="https://example.com" onmouseover="steal()">x</a>`, remove: []string{"onmouseover"}},
		{name: "javascriptリンク", input: `<a href="javascript:steal()">x</a>`, keep: []string{"x"}, remove: []string{"javascript:"}},
		{name: "svg onload", input: `<svg onload="steal()"><circle/></svg>`, remove: []string{"<svg", "onload"}},
		{name: "閉じタグ崩し", input: `"><script>steal()</script>`, remove: []string{"<script"}},
	})
}

// img は https の絶対URLのみ、alt は残る。
func TestSanitize_ImageSources(t *testing.T) {
	runSanitizeCases(t, []sanitizeCase{
		{name: "https", input: `<img src="https://cdn.example/cover.png" alt="カバー画像">`, keep: []string{"<img", `src="https://cdn.example/cover.png"`, `alt="カバー画像"`}},
		{name: "http", input: `<img src="http://cdn.example/cover.png">`, remove: []string{"http://cdn.example"}},
		{name: "data URI", input: `<img src="data:image/png;base64,AAAA">`, remove: []string{"data:image"}},
		{name: "相対パス", input: `<img src="/uploads/cover.png">`, remove: []string{"/uploads/cover.png"}},
		{name: "ホストなし", input: `<img src="https:///cover.png">`, remove: []string{"cover.png"}},
	})
}

// 外部リンクには target と rel が付与される。
func TestSanitize_Links(t *testing.T) {
	runSanitizeCases(t, []sanitizeCase{
		{name: "外部リンク", input: `<a href="https://go.dev/doc">Go docs</a>`, keep: []string{`href="https://go.dev/doc"`, `target="_blank"`, "noopener", "noreferrer", "Go docs"}},
		{name: "target指定は上書き", input: `<a href="https://go.dev" target="_self">go</a>`, keep: []string{`target="_blank"`}, remove: []string{`target="_self"`}},
		{name: "rel指定は上書き", input: `<a href="https://go.dev" rel="opener">go</a>`, keep: []string{"noopener", "noreferrer"}},
		{name: "相対リンクは残さない", input: `<a href="/posts/2">前の記事</a>`, keep: []string{"前の記事"}, remove: []string{"/posts/2"}},
		{name: "hrefなし", input: `<a>ただのテキスト</a>`, keep: []string{"ただのテキスト"}},
	})
}

func TestSanitize_EmptyAndPlainText(t *testing.T) {
	sanitizer := NewContentSanitizer()

	if got := sanitizer.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
	plain := "Go の context は キャンセル を伝播する"
	if got := sanitizer.Sanitize(plain); got != plain {
		t.Errorf("Sanitize(%q) = %q, want unchanged", plain, got)
	}
}

// 保存済みの本文を再度サニタイズしても変わらない。更新時の比較はこれに依存する。
func TestSanitize_StableOnSanitizedOutput(t *testing.T) {
	sanitizer := NewContentSanitizer()
	raw := `<h2>手順</h2><p onclick="x()">まず <a href="https://go.dev">Go</a> を入れる</p>` +
		`<img src="https://cdn.example/a.png" alt="図"><script>x()</script>`

	once := sanitizer.Sanitize(raw)
	twice := sanitizer.Sanitize(once)
	if once != twice {
		t.Errorf("sanitizing twice changed the output:\n once: %q\ntwice: %q", once, twice)
	}
	if sanitizer.Sanitize(raw) != once {
		t.Error("same input produced different output")
	}
}

func TestContentSanitizerInterface(t *testing.T) {
	var _ ContentSanitizerService = NewContentSanitizer()
}

func TestSanitizeOptional(t *testing.T) {
	sanitizer := NewContentSanitizer()

	if got := SanitizeOptional(sanitizer, nil); got != nil {
		t.Errorf("SanitizeOptional(nil) = %q, want nil", *got)
	}

	raw := `<p>抜粋</p><script>alert(1)</script>`
	got := SanitizeOptional(sanitizer, &raw)
	if got == nil {
		t.Fatal("expected non-nil result")
	}
	if *got != "<p>抜粋</p>" {
		t.Errorf("SanitizeOptional(%q) = %q, want %q", raw, *got, "<p>抜粋</p>")
	}
	if raw != `<p>抜粋</p><script>alert(1)</script>` {
		t.Error("input must not be modified")
	}
}
