package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// Handlers はサインアップ・ログイン・ログアウトと認証必須ページのハンドラー群です。
type Handlers struct {
	store        UserStore
	tokens       *TokenManager
	secureCookie bool
}

// NewHandlers は認証ハンドラーを作成します。
func NewHandlers(store UserStore, tokens *TokenManager, secureCookie bool) *Handlers {
	return &Handlers{
		store:        store,
		tokens:       tokens,
		secureCookie: secureCookie,
	}
}

// ShowSignup は GET /signup のハンドラーです。ログイン済みならダッシュボードへ回します。
func (h *Handlers) ShowSignup(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "auth/signup", gin.H{
		"Title": "新規登録",
		"Name":  "",
		"Email": "",
	})
}

// ShowLogin は GET /login のハンドラーです。ログイン済みならダッシュボードへ回します。
func (h *Handlers) ShowLogin(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "auth/login", gin.H{
		"Title": "ログイン",
		"Email": "",
	})
}

// Signup は POST /signup のハンドラーです。
// 成功時はトークンを発行してクッキーに設定し、ダッシュボードへリダイレクトします。
func (h *Handlers) Signup(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if name == "" || email == "" || password == "" {
		c.HTML(http.StatusBadRequest, "auth/signup", gin.H{
			"Title": "新規登録",
			"Error": "すべての項目を入力してください。",
			"Name":  name,
			"Email": email,
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "auth/signup", gin.H{
			"Title": "新規登録",
			"Error": "アカウントの作成に失敗しました。",
			"Name":  name,
			"Email": email,
		})
		return
	}

	user := User{
		Email:        strings.ToLower(email),
		Name:         name,
		PasswordHash: hash,
	}
	if err := h.store.Create(user); err != nil {
		status := http.StatusInternalServerError
		message := "アカウントの作成に失敗しました。"
		if errors.Is(err, ErrDuplicateEmail) {
			status = http.StatusBadRequest
			message = "このメールアドレスは既に登録されています。"
		}
		c.HTML(status, "auth/signup", gin.H{
			"Title": "新規登録",
			"Error": message,
			"Name":  name,
			"Email": email,
		})
		return
	}

	h.setSessionCookie(c, user.Email, user.Name)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Login は POST /login のハンドラーです。
// 未登録メールとパスワード不一致は同一レスポンスにし、どちらで失敗したかを漏らしません。
func (h *Handlers) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if email == "" || password == "" {
		c.HTML(http.StatusBadRequest, "auth/login", gin.H{
			"Title": "ログイン",
			"Error": "メールアドレスとパスワードを入力してください。",
			"Email": email,
		})
		return
	}

	user, ok := h.store.FindByEmail(email)
	if !ok || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		c.HTML(http.StatusBadRequest, "auth/login", gin.H{
			"Title": "ログイン",
			"Error": "メールアドレスまたはパスワードが正しくありません。",
			"Email": email,
		})
		return
	}

	h.setSessionCookie(c, user.Email, user.Name)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout は POST /logout のハンドラーです。セッションクッキーを無条件に破棄します。
func (h *Handlers) Logout(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, "/login")
}

// Dashboard は GET /dashboard のハンドラーです。
func (h *Handlers) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard", gin.H{
		"Title": "ダッシュボード",
		"User":  CurrentUser(c),
	})
}

func (h *Handlers) setSessionCookie(c *gin.Context, email, name string) {
	token, err := h.tokens.Issue(email, name)
	if err != nil {
		// 発行失敗時はクッキーなしで遷移させ、次のアクセスでログインを要求する
		return
	}
	c.SetCookie(CookieName, token, int(TokenTTL.Seconds()), "/", "", h.secureCookie, true)
}
