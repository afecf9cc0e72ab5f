// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeQueryFailed        = "QUERY_FAILED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeAuthRequired       = "AUTH_REQUIRED"
)

// IsCode はエラーチェーン中のAPIErrorが指定コードを持つかを判定する。
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// NewConflictError は一意キー重複エラーを生成する。
func NewConflictError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  message,
		Category: "validation",
		Action:   "別の値を指定してください。",
	}
}

// NewEmailTakenError はメールアドレス登録済みエラーを生成する。
func NewEmailTakenError() *APIError {
	return NewConflictError("このメールアドレスは既に登録されています。")
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー不在とパスワード不一致を区別しないため、常に同一のメッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewPostNotFoundError は記事未検出エラーを生成する。
// 非公開記事を所有者以外が参照した場合もこのエラーを返す。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", postID),
		Category: "content",
		Action:   "記事IDを確認してください。",
	}
}

// NewRowNotFoundError はデモ用テーブルの行が見つからない場合のエラーを生成する。
func NewRowNotFoundError(relation string, id int64) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%s に ID %d の行がありません。", relation, id),
		Category: "content",
		Action:   "IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUnauthorizedError は所有者以外による更新・削除のエラーを生成する。
func NewUnauthorizedError(operation string) *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  fmt.Sprintf("自分の記事のみ%sできます。", operation),
		Category: "auth",
		Action:   "記事の所有者でログインしてください。",
	}
}

// NewQueryFailedError はストレージ層の障害を表すエラーを生成する。
// 元のエラー型は保持せず、メッセージのみを引き継ぐ。
func NewQueryFailedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeQueryFailed,
		Message:  fmt.Sprintf("データベースクエリに失敗しました: %s", message),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidRequestError は入力値不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  reason,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewAuthRequiredError はトークン未提示・無効・期限切れのエラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}
