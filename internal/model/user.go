// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashは永続化層と認証サービスの外には出さない。
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PublicUser はパスワードハッシュを含まない公開用のユーザー表現。
type PublicUser struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public はハッシュを取り除いた公開ビューを返す。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthResult は登録・ログイン成功時に返すトークンとユーザー。
type AuthResult struct {
	Token string
	User  PublicUser
}
