package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

var _ Backend = (*Client)(nil)

// Client talks to the back-office REST API. It is stateless; tokens are
// passed in by callers, never cached here.
type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

// ClientOption customizes Client construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger overrides the logger.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a Client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterRequest is the /register payload.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Token exchanges credentials for a bearer token. The endpoint speaks the
// OAuth2 password grant shape: form-encoded, with the email under username.
func (c *Client) Token(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out tokenResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}

	return out.AccessToken, nil
}

// Register creates an account and returns the session token issued with it.
func (c *Client) Register(ctx context.Context, payload RegisterRequest) (string, error) {
	req, err := c.jsonRequest(ctx, "/register", payload)
	if err != nil {
		return "", err
	}

	var out tokenResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}

	return out.AccessToken, nil
}

// RequestOTP asks the backend to email an activation code.
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	req, err := c.jsonRequest(ctx, "/auth/request-otp", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

// VerifyOTP proves control of the email address. The returned token is
// temporary: it authorizes SetPassword and nothing else.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	req, err := c.jsonRequest(ctx, "/auth/verify-otp", map[string]string{
		"email": email,
		"code":  code,
	})
	if err != nil {
		return "", err
	}

	var out tokenResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}

	return out.AccessToken, nil
}

// SetPassword finishes activation, authorized by the temporary token from
// VerifyOTP.
func (c *Client) SetPassword(ctx context.Context, tempToken, newPassword string) error {
	req, err := c.jsonRequest(ctx, "/auth/set-password", map[string]string{
		"new_password": newPassword,
	})
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tempToken)

	return c.do(req, nil)
}

// CurrentUser fetches the account behind token; the landing view uses
// IsAdmin to pick a portal.
func (c *Client) CurrentUser(ctx context.Context, token string) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users/me", nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build user request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	account := &Account{}
	if err := c.do(req, account); err != nil {
		return nil, err
	}

	return account, nil
}

func (c *Client) jsonRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("failed to build %s request", path))
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// do executes the request and decodes a 2xx body into out when out is non
// nil. Non-2xx responses become an *APIError carrying the backend detail
// message when the body had one.
func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request to %s failed: %v", req.URL.Path, err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "request did not complete")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return c.apiError(res)
	}

	if out == nil {
		// drain so the connection can be reused
		io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to decode response body")
	}

	return nil
}

func (c *Client) apiError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}

	c.logger.Warn("api responded %d on %s: %s", res.StatusCode, res.Request.URL.Path, apiErr.Detail)

	return apiErr
}
