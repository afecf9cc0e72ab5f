package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/lestrrat-go/jwx/jwt"
)

// DefaultTokenTTL はセッショントークンの有効期間（7日）。
const DefaultTokenTTL = 7 * 24 * time.Hour

// トークンのクレーム名
const (
	ClaimUserID = "userId"
	ClaimEmail  = "email"
)

// ErrInvalidToken は署名不正・期限切れ・クレーム欠落のトークンを表す。
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims はセッショントークンが保持する検証済みのクレーム。
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer はHS256署名のステートレスなセッショントークンを発行・検証する。
// 失効手段は有効期限のみで、リフレッシュや無効化は行わない。
type TokenIssuer struct {
	ja  *jwtauth.JWTAuth
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer はTokenIssuerを生成する。ttlが0以下の場合はDefaultTokenTTLを使う。
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		ja:  jwtauth.New("HS256", []byte(secret), nil),
		ttl: ttl,
		now: time.Now,
	}
}

// JWTAuth は内部のjwtauthインスタンスを返す。
func (i *TokenIssuer) JWTAuth() *jwtauth.JWTAuth {
	return i.ja
}

// Issue はユーザーIDとメールアドレスを束縛したトークンを発行する。
func (i *TokenIssuer) Issue(userID, email string) (string, error) {
	now := i.now()
	claims := map[string]interface{}{
		ClaimUserID: userID,
		ClaimEmail:  email,
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(i.ttl))

	_, tokenString, err := i.ja.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify は署名と有効期限を検証し、クレームを返す。
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := i.ja.Decode(tokenString)
	if err != nil || token == nil {
		return nil, ErrInvalidToken
	}
	if err := jwt.Validate(token, jwt.WithClock(jwt.ClockFunc(i.now))); err != nil {
		return nil, ErrInvalidToken
	}

	private := token.PrivateClaims()
	userID, _ := private[ClaimUserID].(string)
	email, _ := private[ClaimEmail].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    userID,
		Email:     email,
		IssuedAt:  token.IssuedAt(),
		ExpiresAt: token.Expiration(),
	}, nil
}
