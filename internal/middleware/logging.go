package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/blogcore/internal/metrics"
)

// requestInfoContextKey は内側のミドルウェアが認証結果を書き戻すためのキー。
var requestInfoContextKey = contextKey("request_info")

// requestInfo はリクエスト処理中に判明した情報を外側のミドルウェアへ伝える。
type requestInfo struct {
	userID string
}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、status、duration_ms、user_id（認証済みの場合）を含む。
// collectorがnilでなければステータスコードごとのカウンタも記録する。
func NewLoggingMiddleware(logger *slog.Logger, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			info := &requestInfo{userID: OptionalUserID(r.Context())}
			ctx := context.WithValue(r.Context(), requestInfoContextKey, info)

			next.ServeHTTP(rec, r.WithContext(ctx))

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			collector.RecordHTTPStatus(rec.statusCode)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", durationMs),
			}
			if info.userID != "" {
				args = append(args, slog.String("user_id", info.userID))
			}

			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
