// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/blogcore/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (*model.AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*model.AuthResult, error)
	GetByID(ctx context.Context, id string) (*model.PublicUser, error)
}

// AuthHandler はメールアドレス・パスワード認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// credentialsRequest は登録・ログインリクエストのボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register はユーザーを登録しトークンを発行する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toAuthResponse(res))
}

// Login はメールアドレスとパスワードで認証しトークンを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toAuthResponse(res))
}

// Me は認証中のユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toUserResponse(*user))
}
