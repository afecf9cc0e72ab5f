// Package auth はユーザー登録・認証とセッショントークンの発行を提供する。
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogcore/internal/metrics"
	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/repository"
)

// dummyPassword は存在しないメールアドレスでの認証時に照合するダミーハッシュの元。
const dummyPassword = "blogcore-dummy-password"

// Service は認証に関するビジネスロジックを提供する。
// 各操作はusersリレーションへの読み取り1回と書き込み高々1回のみを行う。
type Service struct {
	userRepo  repository.UserRepository
	hasher    Hasher
	tokens    *TokenIssuer
	metrics   metrics.MetricsCollector
	dummyHash string
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	userRepo repository.UserRepository,
	hasher Hasher,
	tokens *TokenIssuer,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		slog.Warn("failed to prepare dummy password hash", slog.String("error", err.Error()))
	}
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		metrics:   collector,
		dummyHash: dummyHash,
	}
}

// Register はユーザーを登録し、トークンと公開ユーザー情報を返す。
// メールアドレスは保存値との大文字小文字を区別した完全一致で重複判定する。
func (s *Service) Register(ctx context.Context, email, password string) (*model.AuthResult, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, model.NewInvalidRequestError("パスワードを処理できません。72バイト以下で指定してください。")
	}

	now := time.Now()
	candidate := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// 署名に失敗した場合に行だけが残らないよう、トークンを先に発行する
	token, err := s.tokens.Issue(candidate.ID, candidate.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, candidate)
	if err != nil {
		// 同時登録で一意制約に負けた場合も重複として扱う
		if model.IsCode(err, model.ErrCodeConflict) {
			return nil, model.NewEmailTakenError()
		}
		return nil, err
	}
	result := &model.AuthResult{Token: token, User: user.Public()}

	s.metrics.RecordRegistration()
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return result, nil
}

// Authenticate はメールアドレスとパスワードを検証し、トークンと公開ユーザー情報を返す。
// ユーザー不在とパスワード不一致は同一のエラーになる。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		// 応答時間を揃えるため、存在しない場合もハッシュ照合を1回行う
		_ = s.hasher.Compare(s.dummyHash, password)
		return nil, s.loginFailed()
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, s.loginFailed()
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(true)
	slog.Info("user authenticated", slog.String("user_id", user.ID))
	return result, nil
}

// GetByID は公開ユーザー情報を返す。存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	public := user.Public()
	return &public, nil
}

// ParseToken はセッショントークンを検証し、クレームを返す。
func (s *Service) ParseToken(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

func (s *Service) issue(user *model.User) (*model.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &model.AuthResult{Token: token, User: user.Public()}, nil
}

func (s *Service) loginFailed() error {
	s.metrics.RecordLogin(false)
	slog.Warn("authentication failed")
	return model.NewInvalidCredentialsError()
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return model.NewInvalidRequestError("有効なメールアドレスを指定してください。")
	}
	if password == "" {
		return model.NewInvalidRequestError("パスワードを指定してください。")
	}
	return nil
}

// IsInvalidToken はトークン検証エラーかどうかを返す。
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
