package session

import (
	"sync"
	"time"
)

// Monitor watches the persisted token and logs the session out the moment
// it expires. It is passive: one instance per application mount, one
// deferred callback, no polling. The callback horizon equals the token's
// exact remaining lifetime, so a single timer is sufficient.
type Monitor struct {
	store  *Store
	nav    Navigator
	logger Logger
	now    func() time.Time

	mu    sync.Mutex
	timer *time.Timer
}

// MonitorOption customizes Monitor construction.
type MonitorOption func(*Monitor)

// WithMonitorClock injects a custom clock (useful for tests).
func WithMonitorClock(clock func() time.Time) MonitorOption {
	return func(m *Monitor) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithMonitorLogger overrides the logger.
func WithMonitorLogger(logger Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMonitor returns a Monitor over store that navigates via nav on logout.
func NewMonitor(store *Store, nav Navigator, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		store:  store,
		nav:    nav,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Start reads the persisted token and arms the expiry timer.
//
//   - No token: stay idle, nothing scheduled.
//   - Malformed token: fatal to the session, logout fires synchronously.
//   - Expired token: logout fires synchronously.
//   - Valid token: a single timer fires logout when the exp claim lapses.
//
// Calling Start again rearms against the currently persisted token.
func (m *Monitor) Start() {
	m.Stop()

	token := m.store.Token()
	if token == "" {
		return
	}

	remaining, err := Remaining(token, m.now())
	if err != nil {
		m.logger.Error("invalid token format: %v", err)
		m.Logout()
		return
	}

	if remaining <= 0 {
		m.logger.Info("session expired, logging out")
		m.Logout()
		return
	}

	m.logger.Debug("session valid for %.1f minutes", remaining.Minutes())

	m.mu.Lock()
	m.timer = time.AfterFunc(remaining, func() {
		m.logger.Info("session time limit reached, logging out")
		m.Logout()
	})
	m.mu.Unlock()
}

// Stop releases the armed callback. Required on teardown so a stale timer
// cannot log out a session the user already replaced.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Logout clears the persisted session and returns to the login view. Safe
// to call repeatedly; shared with the manual logout control.
func (m *Monitor) Logout() {
	Logout(m.store, m.nav)
}
