package session

import (
	"sync"
	"time"
)

// cookieEpoch is the already-past expiry used to clear the guard cookie.
var cookieEpoch = time.Unix(1, 0).UTC()

// Store owns the persisted AccessToken. The token lives in two places that
// must agree: the key-value Storage, read by API-calling code, and the
// CookieJar entry the route guard checks on navigation. Both are written
// under one lock so no reader can observe them out of sync.
//
// Write discipline: only login/registration success paths and the logout
// action call SetSession/ClearSession. Everything else is a reader.
type Store struct {
	mu      sync.Mutex
	storage Storage
	cookies CookieJar
	key     string
}

// NewStore returns a Store persisting under key, or DefaultTokenKey when key
// is empty.
func NewStore(storage Storage, cookies CookieJar, key string) *Store {
	if key == "" {
		key = DefaultTokenKey
	}
	return &Store{
		storage: storage,
		cookies: cookies,
		key:     key,
	}
}

// SetSession makes token the current session, replacing any previous one.
func (s *Store) SetSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storage.Set(s.key, token)
	s.cookies.SetCookie(s.key, token, "/", time.Time{})
}

// ClearSession removes the persisted token and expires the guard cookie.
// Safe to call when no session exists.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storage.Delete(s.key)
	s.cookies.SetCookie(s.key, "", "/", cookieEpoch)
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.storage.Get(s.key)
	if !ok {
		return ""
	}
	return token
}

// Active reports whether a session token is persisted.
func (s *Store) Active() bool {
	return s.Token() != ""
}

// Key returns the storage key, which doubles as the guard cookie name.
func (s *Store) Key() string {
	return s.key
}

// Logout clears the persisted session and returns the user to the login
// view. It is idempotent and shared by the manual logout control and the
// expiry monitor.
func Logout(store *Store, nav Navigator) {
	store.ClearSession()
	if nav != nil {
		nav.Push(RouteLogin)
	}
}

var _ Storage = (*MemoryStorage)(nil)
var _ CookieJar = (*MemoryCookieJar)(nil)

// MemoryStorage is an in-memory Storage, used headless and in tests.
type MemoryStorage struct {
	entries map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string]string{}}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) {
	m.entries[key] = value
}

func (m *MemoryStorage) Delete(key string) {
	delete(m.entries, key)
}

type memoryCookie struct {
	value   string
	path    string
	expires time.Time
}

// MemoryCookieJar is an in-memory CookieJar. A cookie set with a past expiry
// is treated as absent, matching browser semantics.
type MemoryCookieJar struct {
	cookies map[string]memoryCookie
	now     func() time.Time
}

func NewMemoryCookieJar() *MemoryCookieJar {
	return &MemoryCookieJar{
		cookies: map[string]memoryCookie{},
		now:     time.Now,
	}
}

func (j *MemoryCookieJar) SetCookie(name, value, path string, expires time.Time) {
	j.cookies[name] = memoryCookie{value: value, path: path, expires: expires}
}

func (j *MemoryCookieJar) Cookie(name string) string {
	c, ok := j.cookies[name]
	if !ok {
		return ""
	}
	if !c.expires.IsZero() && c.expires.Before(j.now()) {
		return ""
	}
	return c.value
}
