// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/hitoshi/blogcore/internal/auth"
	"github.com/hitoshi/blogcore/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenParser はセッショントークンの検証に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// NewRequireAuthMiddleware は Authorization: Bearer ヘッダーのトークンを検証し、
// 認証済みユーザーIDをリクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い・無効・期限切れの場合は401を返す。
func NewRequireAuthMiddleware(parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFromRequest(parser, r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
				return
			}
			ctx := ContextWithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware はトークンがあれば検証してユーザーIDを注入する。
// トークンが無い、または無効な場合は匿名リクエストとして次に渡す。
func NewOptionalAuthMiddleware(parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := claimsFromRequest(parser, r); ok {
				r = r.WithContext(ContextWithUserID(r.Context(), claims.UserID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFromRequest(parser TokenParser, r *http.Request) (*auth.Claims, bool) {
	token := jwtauth.TokenFromHeader(r)
	if token == "" {
		return nil, false
	}
	claims, err := parser.ParseToken(token)
	if err != nil || claims == nil || claims.UserID == "" {
		return nil, false
	}
	return claims, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// OptionalUserID はユーザーIDを返す。匿名の場合は空文字。
func OptionalUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// 外側のロギングミドルウェアが用意したrequestInfoがあればそこにも記録する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.userID = userID
	}
	return context.WithValue(ctx, userIDContextKey, userID)
}
