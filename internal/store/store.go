package store

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Store is a shared key-value store for granted token strings. It stands in
// for the host platform's preference storage: a later login attempt consults
// it to decide whether the dialog's cookie session can be reused.
type Store struct {
	c *cache.Cache
}

const (
	tokenKey        = "TOKEN"
	keyNamespace    = "web-login.auth-handler."
	cleanupInterval = 10 * time.Minute
)

// New creates a store. defaultTTL bounds how long a saved token stays
// reusable; zero or negative means tokens are kept until deleted.
func New(defaultTTL time.Duration) *Store {
	ttl := cache.NoExpiration
	if defaultTTL > 0 {
		ttl = defaultTTL
	}
	return &Store{c: cache.New(ttl, cleanupInterval)}
}

// SaveToken records the granted token string under the app's namespace.
func (s *Store) SaveToken(appID, token string) {
	s.c.Set(key(appID), token, cache.DefaultExpiration)
}

// SaveTokenFor records the token with an explicit lifetime, typically the
// token's own expiry window.
func (s *Store) SaveTokenFor(appID, token string, ttl time.Duration) {
	s.c.Set(key(appID), token, ttl)
}

// Token returns the saved token string, or "" when none is stored.
func (s *Store) Token(appID string) string {
	v, ok := s.c.Get(key(appID))
	if !ok {
		return ""
	}
	t, _ := v.(string)
	return t
}

// Delete removes the saved token for the app.
func (s *Store) Delete(appID string) {
	s.c.Delete(key(appID))
}

func key(appID string) string {
	return keyNamespace + appID + "." + tokenKey
}
