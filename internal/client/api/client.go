// Package api is the HTTP and websocket client for the chat server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusUnauthorized
}

// Client talks to one server. The session cookie lives in its jar and can
// be exported with Token and restored with SetToken.
type Client struct {
	base *url.URL
	hc   *http.Client
}

func NewClient(serverURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("bad server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("bad server url %q: scheme must be http or https", serverURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: base, hc: &http.Client{Jar: jar, Timeout: timeout}}, nil
}

// Token returns the current session cookie value, or "".
func (c *Client) Token() string {
	for _, ck := range c.hc.Jar.Cookies(c.base) {
		if ck.Name == common.SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetToken puts a previously saved session token back into the jar.
func (c *Client) SetToken(token string) {
	c.hc.Jar.SetCookies(c.base, []*http.Cookie{{
		Name:  common.SessionCookieName,
		Value: token,
		Path:  "/",
	}})
}

func (c *Client) Signup(ctx context.Context, fullName, email, password string) (*models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": fullName, "email": email, "password": password,
	}, &u)
	return &u, err
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &u)
	return &u, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Check returns the user behind the current session.
func (c *Client) Check(ctx context.Context) (*models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/api/auth/check", nil, &u)
	return &u, err
}

// UpdateProfilePic uploads an image given as a data URL.
func (c *Client) UpdateProfilePic(ctx context.Context, dataURL string) (*models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPut, "/api/auth/update-profile", map[string]string{"profilePic": dataURL}, &u)
	return &u, err
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/api/messages/users", nil, &users)
	return users, err
}

func (c *Client) Conversation(ctx context.Context, userID string) ([]models.Message, error) {
	var msgs []models.Message
	err := c.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(userID), nil, &msgs)
	return msgs, err
}

// Send posts a message; image is an optional data URL.
func (c *Client) Send(ctx context.Context, userID, text, image string) (*models.Message, error) {
	var m models.Message
	err := c.do(ctx, http.MethodPost, "/api/messages/send/"+url.PathEscape(userID), map[string]string{
		"text": text, "image": image,
	}, &m)
	return &m, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &e) != nil || e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
