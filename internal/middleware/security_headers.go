package middleware

import "net/http"

// apiSecurityHeaders はJSON APIの全レスポンスに付与するヘッダー。
// HTMLを返さないため、CSPはすべての読み込みを禁止する。
var apiSecurityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
}

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
// Authorizationヘッダー付きのリクエストは本人の下書きを含み得るため、キャッシュを禁止する。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range apiSecurityHeaders {
				h.Set(kv[0], kv[1])
			}
			if r.Header.Get("Authorization") != "" {
				h.Set("Cache-Control", "no-store")
				h.Add("Vary", "Authorization")
			}
			next.ServeHTTP(w, r)
		})
	}
}
