package session

import (
	"context"
	"fmt"
	"time"
)

// Default routes and the key under which the bearer token is persisted. The
// route guard reads the cookie of the same name.
const (
	DefaultTokenKey = "token"

	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteAdmin    = "/admin"
	RouteCustomer = "/customer"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Navigator abstracts the host application's view routing. The session core
// only ever pushes a path; it never inspects the current location.
type Navigator interface {
	Push(path string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Push(path string) {
	if f != nil {
		f(path)
	}
}

// Storage is the key-value half of the persisted session state, the
// localStorage analog. Implementations need not be safe for concurrent use;
// Store serializes access.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// CookieJar is the cookie half of the persisted session state. Clearing a
// cookie is expressed by setting it to the empty value with an already-past
// expiry, which is how the route guard observes logout.
type CookieJar interface {
	SetCookie(name, value, path string, expires time.Time)
	Cookie(name string) string
}

// Backend is the back-office REST API surface the session core depends on.
// Client is the production implementation; tests substitute mocks.
type Backend interface {
	Token(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, req RegisterRequest) (string, error)
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	SetPassword(ctx context.Context, tempToken, newPassword string) error
	CurrentUser(ctx context.Context, token string) (*Account, error)
}

// Account is the authenticated user as reported by /api/users/me. IsAdmin
// decides which portal the landing page offers.
type Account struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
