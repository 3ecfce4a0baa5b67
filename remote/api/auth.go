package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
)

type authResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var resp authResponse
	if err := c.request(ctx, http.MethodPost, "auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	c.setUser(resp.User)
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	var resp authResponse
	body := models.LoginRequest{Username: username, Password: password}
	if err := c.request(ctx, http.MethodPost, "auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.setUser(resp.User)
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.request(ctx, http.MethodPost, "auth/logout", nil, nil, nil)
	c.setUser(nil)
	c.SetSessionCookie("")
	if err != nil && !errors.Is(err, remote.ErrAuthRequired) {
		return err
	}
	return nil
}

// Me returns the logged-in user, or an ErrAuthRequired error.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.request(ctx, http.MethodGet, "auth/me", nil, nil, &user); err != nil {
		if errors.Is(err, remote.ErrAuthRequired) {
			c.setUser(nil)
		}
		return nil, err
	}
	c.setUser(&user)
	return &user, nil
}

// UserID implements remote.Identity. Without a cached user it asks the server
// once.
func (c *Client) UserID(ctx context.Context) (string, bool) {
	c.mu.RLock()
	user := c.user
	c.mu.RUnlock()
	if user != nil {
		return user.ID, true
	}
	if c.SessionCookie() == "" {
		return "", false
	}
	user, err := c.Me(ctx)
	if err != nil {
		return "", false
	}
	return user.ID, true
}

// SessionCookie returns the current session id, for persisting between runs.
func (c *Client) SessionCookie() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionCookie restores a persisted session id. An empty value clears it.
func (c *Client) SetSessionCookie(value string) {
	ck := &http.Cookie{Name: SessionCookieName, Value: value, Path: "/"}
	if value == "" {
		ck.MaxAge = -1
	}
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{ck})
}

func (c *Client) setUser(user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

type importResponse struct {
	Message string              `json:"message"`
	Result  models.ImportResult `json:"result"`
}

// Import uploads an export of local data into the logged-in account.
func (c *Client) Import(ctx context.Context, snapshot models.Snapshot) (*models.ImportResult, error) {
	var resp importResponse
	if err := c.request(ctx, http.MethodPost, "migrate/import", nil, snapshot, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}
