package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogcore/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// StatusForCode はAPIErrorのコードをHTTPステータスに変換する。
func StatusForCode(code string) int {
	switch code {
	case model.ErrCodeConflict:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials, model.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case model.ErrCodeNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusForbidden
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError はサービス層のエラーをステータスに変換して書き込む。
// QUERY_FAILEDの詳細はログにのみ残し、レスポンスには一般的なメッセージを返す。
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unexpected error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		WriteInternalServerError(w)
		return
	}

	status := StatusForCode(apiErr.Code)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", apiErr.Code),
			slog.String("error", apiErr.Message),
		)
		WriteErrorResponse(w, status, &model.APIError{
			Code:     apiErr.Code,
			Message:  "データベースクエリに失敗しました。",
			Category: apiErr.Category,
			Action:   apiErr.Action,
		})
		return
	}
	WriteErrorResponse(w, status, apiErr)
}
