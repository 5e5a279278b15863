package store

import (
	"testing"
	"time"
)

func TestStore(t *testing.T) {
	s := New(0)

	t.Run("empty store", func(t *testing.T) {
		if got := s.Token("app-123"); got != "" {
			t.Errorf("Token = %q, want empty", got)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		s.SaveToken("app-123", "token-abc")
		if got := s.Token("app-123"); got != "token-abc" {
			t.Errorf("Token = %q, want token-abc", got)
		}
	})

	t.Run("apps are namespaced", func(t *testing.T) {
		s.SaveToken("app-456", "token-def")
		if got := s.Token("app-123"); got != "token-abc" {
			t.Errorf("Token(app-123) = %q, want token-abc", got)
		}
		if got := s.Token("app-456"); got != "token-def" {
			t.Errorf("Token(app-456) = %q, want token-def", got)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s.SaveToken("app-123", "token-new")
		if got := s.Token("app-123"); got != "token-new" {
			t.Errorf("Token = %q, want token-new", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s.Delete("app-123")
		if got := s.Token("app-123"); got != "" {
			t.Errorf("Token after delete = %q, want empty", got)
		}
	})
}

func TestStoreTTL(t *testing.T) {
	s := New(0)
	s.SaveTokenFor("app-123", "token-abc", 20*time.Millisecond)
	if got := s.Token("app-123"); got != "token-abc" {
		t.Fatalf("Token = %q before expiry", got)
	}
	time.Sleep(40 * time.Millisecond)
	if got := s.Token("app-123"); got != "" {
		t.Errorf("Token = %q after expiry, want empty", got)
	}
}
