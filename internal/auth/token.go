// Package auth はセッショントークンの発行・検証とアカウント管理を提供します。
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL はトークン発行からの有効期間です。
const TokenTTL = 2 * time.Hour

// CookieName はセッショントークンを保持するクッキー名です。
const CookieName = "token"

// Claims はセッショントークンのペイロードです。
// 標準クレームに加えて識別用のメールアドレスと表示名を持ちます。
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenManager はセッショントークンの発行と検証を担います。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager はトークンマネージャーを作成します。
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue は署名済みトークン文字列を発行します。有効期限は発行時刻から TokenTTL です。
func (m *TokenManager) Issue(email, name string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: email,
		Name:  name,
	})

	return token.SignedString(m.secret)
}

// Verify はトークンを検証し、有効であればペイロードを返します。
// トークン欠如・改ざん・署名不一致・期限切れはすべて ok=false に畳み込み、
// 呼び出し側にエラーを返すことはありません。
func (m *TokenManager) Verify(tokenString string) (*Claims, bool) {
	if tokenString == "" {
		return nil, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}

	return claims, true
}
