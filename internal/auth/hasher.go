package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost は許容する最小のbcryptコスト。
const MinBcryptCost = 10

// Hasher はパスワードの一方向ハッシュ化と照合を行う。
type Hasher interface {
	Hash(password string) (string, error)
	// Compare は一致する場合にnilを返す。
	Compare(hash, password string) error
}

// BcryptHasher はbcryptによるHasher実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。MinBcryptCost未満のコストは引き上げる。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost は実際に使用するコストを返す。
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash はソルト付きのbcryptハッシュを生成する。
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare はハッシュとパスワードを照合する。
func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// ErrPasswordMismatch はパスワード不一致を表す。
var ErrPasswordMismatch = errors.New("password does not match")
