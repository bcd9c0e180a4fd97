package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	session "github.com/asfalya/go-session"
)

// MockBackend implements session.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Token(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Register(ctx context.Context, req session.RegisterRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) RequestOTP(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockBackend) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) SetPassword(ctx context.Context, tempToken, newPassword string) error {
	args := m.Called(ctx, tempToken, newPassword)
	return args.Error(0)
}

func (m *MockBackend) CurrentUser(ctx context.Context, token string) (*session.Account, error) {
	args := m.Called(ctx, token)
	if v := args.Get(0); v != nil {
		return v.(*session.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingNavigator captures every pushed path. Safe for use from the
// monitor's timer goroutine.
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Push(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

func (n *recordingNavigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.paths)
}

// newTestStore builds a Store over fresh in-memory backing.
func newTestStore() *session.Store {
	return session.NewStore(session.NewMemoryStorage(), session.NewMemoryCookieJar(), "")
}

// mintToken signs an HS256 token expiring at exp. The monitor never checks
// the signature, so the key only matters for shape.
func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": "customer@asfalya.com",
		"exp": jwt.NewNumericDate(exp),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	return token
}

// mintTokenWithoutExpiry signs a token that has no exp claim at all.
func mintTokenWithoutExpiry(t *testing.T) string {
	t.Helper()

	claims := jwt.MapClaims{"sub": "customer@asfalya.com"}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	return token
}
