package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker はDB疎通確認のためのインターフェース。*sqlx.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// NewHealthHandler は /health のハンドラーを返す。
// DBに到達できない場合は503を返す。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "unreachable"})
			return
		}
		writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
	}
}
