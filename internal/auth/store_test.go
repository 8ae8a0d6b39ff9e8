package auth

import (
	"errors"
	"testing"
)

func TestMemoryStoreCreateAndFind(t *testing.T) {
	store := NewMemoryStore()

	err := store.Create(User{Email: "alice@example.com", Name: "Alice", PasswordHash: []byte("hash")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	user, ok := store.FindByEmail("alice@example.com")
	if !ok {
		t.Fatal("FindByEmail did not find created user")
	}
	if user.Name != "Alice" {
		t.Errorf("name = %s, want Alice", user.Name)
	}
}

func TestMemoryStoreCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(User{Email: "Alice@Example.com", Name: "Alice"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 検索は大文字小文字を区別しない
	if _, ok := store.FindByEmail("ALICE@EXAMPLE.COM"); !ok {
		t.Error("FindByEmail is case sensitive")
	}

	// 大文字違いの再登録は重複として拒否される
	err := store.Create(User{Email: "alice@example.com", Name: "Impostor"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestMemoryStoreFindMissing(t *testing.T) {
	store := NewMemoryStore()
	if user, ok := store.FindByEmail("nobody@example.com"); ok || user != nil {
		t.Errorf("expected miss, got %+v", user)
	}
}

func TestMemoryStoreReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(User{Email: "alice@example.com", Name: "Alice"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	user, _ := store.FindByEmail("alice@example.com")
	user.Name = "Mallory"

	again, _ := store.FindByEmail("alice@example.com")
	if again.Name != "Alice" {
		t.Error("FindByEmail leaked a mutable reference to stored user")
	}
}
