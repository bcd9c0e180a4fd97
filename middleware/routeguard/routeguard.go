// Package routeguard gates access to the protected portal areas on the
// presence of the session cookie. The guard performs no decoding and no
// verification, only presence checking; token validity is the backend's
// business on every API call. The session core keeps the cookie in lockstep
// with its key-value store, so presence here means "logged in as far as
// navigation is concerned".
package routeguard

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Config collects the guard's knobs. Zero values fall back to the portal
// defaults.
type Config struct {
	// CookieName is the session cookie to check. Defaults to "token".
	CookieName string
	// LoginPath receives redirected unauthenticated requests. Defaults to
	// "/login".
	LoginPath string
	// HomePath receives logged-in visitors of LoginPath. Defaults to "/".
	HomePath string
	// Protected lists the path prefixes that require a session. Defaults to
	// the admin and customer portals.
	Protected []string
	// Next skips the guard for a request when it returns true.
	Next func(c *fiber.Ctx) bool
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "token"
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}
	if cfg.Protected == nil {
		cfg.Protected = []string{"/admin", "/customer"}
	}

	return cfg
}

// New returns the guard middleware.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		token := c.Cookies(cfg.CookieName)
		path := c.Path()

		for _, prefix := range cfg.Protected {
			if strings.HasPrefix(path, prefix) && token == "" {
				return c.Redirect(cfg.LoginPath, fiber.StatusFound)
			}
		}

		// a logged-in visit to the login view goes home instead
		if strings.HasPrefix(path, cfg.LoginPath) && token != "" {
			return c.Redirect(cfg.HomePath, fiber.StatusFound)
		}

		return c.Next()
	}
}
