package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// RequireLogin はセッショントークンを検証するミドルウェアを返します。
// トークンが無効な場合はエラーページではなくログイン画面へリダイレクトします。
func (m *TokenManager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.verifyFromCookie(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// AttachUserIfAny は有効なトークンがある場合のみユーザーをコンテキストに載せる
// ミドルウェアを返します。未ログインでも拒否はしません。公開ページで使用します。
func (m *TokenManager) AttachUserIfAny() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := m.verifyFromCookie(c); ok {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}
}

func (m *TokenManager) verifyFromCookie(c *gin.Context) (*Claims, bool) {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return m.Verify(token)
}

// CurrentUser はコンテキストからログイン済みユーザーを取り出します。
// 未ログインの場合は nil を返します。
func CurrentUser(c *gin.Context) *Claims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
