package auth

import (
	"errors"
	"strings"
	"sync"
)

// ErrDuplicateEmail は登録済みメールアドレスでの再登録を表します。
var ErrDuplicateEmail = errors.New("email already registered")

// User はアカウント1件を表します。パスワードは検証子（bcryptハッシュ）のみを保持し、
// 平文は一切保存しません。
type User struct {
	Email        string // 小文字化したメールアドレス（一意キー）
	Name         string
	PasswordHash []byte
}

// UserStore はアカウントの参照と作成を提供します。
// Create はメールアドレスの存在確認と挿入を不可分に行う必要があります。
type UserStore interface {
	FindByEmail(email string) (*User, bool)
	Create(user User) error
}

// MemoryStore はプロセス内メモリ上の UserStore 実装です。
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]User
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]User),
	}
}

// FindByEmail はメールアドレス（大文字小文字を区別しない）でアカウントを検索します。
func (s *MemoryStore) FindByEmail(email string) (*User, bool) {
	key := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[key]
	if !ok {
		return nil, false
	}
	return &user, true
}

// Create はアカウントを作成します。存在確認と挿入は同一ロック内で行うため、
// 並行サインアップでも重複登録は発生しません。
func (s *MemoryStore) Create(user User) error {
	key := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[key]; exists {
		return ErrDuplicateEmail
	}
	user.Email = key
	s.users[key] = user
	return nil
}
