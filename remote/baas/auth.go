package baas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/golang-jwt/jwt/v5"
)

// Session is a signed-in GoTrue session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}

func (s *Session) expiring(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.Add(30*time.Second).After(s.ExpiresAt)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// sessionFromToken reads sub and exp from the access token. The signature is
// verified by the backend on every request, so it is not checked here.
func sessionFromToken(tr tokenResponse) (*Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("access token has no subject")
	}
	sess := &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		UserID:       sub,
		Email:        tr.User.Email,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	return sess, nil
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Restore installs a persisted session.
func (c *Client) Restore(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// UserID implements remote.Identity. An expired session is refreshed once.
func (c *Client) UserID(ctx context.Context) (string, bool) {
	sess := c.Session()
	if sess == nil {
		return "", false
	}
	if sess.expiring(c.now()) {
		refreshed, err := c.Refresh(ctx)
		if err != nil {
			return "", false
		}
		sess = refreshed
	}
	return sess.UserID, true
}

func (c *Client) token(ctx context.Context, grant string, body any) (*Session, error) {
	params := url.Values{}
	params.Set("grant_type", grant)

	var tr tokenResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/v1/token", params: params, body: body, anon: true}, &tr); err != nil {
		return nil, err
	}
	sess, err := sessionFromToken(tr)
	if err != nil {
		c.logger.Error("supabase token rejected", "error", err)
		return nil, remote.NewError(remote.ErrAuthRequired, "authentication required, please log in again")
	}
	c.Restore(sess)
	return sess, nil
}

// Refresh exchanges the refresh token for a new session.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	sess := c.Session()
	if sess == nil || sess.RefreshToken == "" {
		return nil, remote.NewError(remote.ErrAuthRequired, "authentication required, please log in again")
	}
	refreshed, err := c.token(ctx, "refresh_token", map[string]string{"refresh_token": sess.RefreshToken})
	if err != nil {
		c.Restore(nil)
		return nil, err
	}
	return refreshed, nil
}

// resolveEmail maps a username to the account email through the
// get_email_by_username function. Identifiers containing @ are used as is.
func (c *Client) resolveEmail(ctx context.Context, identifier string) (string, error) {
	if strings.Contains(identifier, "@") {
		return identifier, nil
	}
	var email *string
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/rest/v1/rpc/get_email_by_username",
		body:   map[string]string{"p_username": identifier},
		anon:   true,
	}, &email)
	if err != nil {
		return "", err
	}
	if email == nil || *email == "" {
		return "", remote.NewError(remote.ErrAuthRequired, "invalid username or password")
	}
	return *email, nil
}

// SignIn accepts a username or an email address.
func (c *Client) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	email, err := c.resolveEmail(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	return c.token(ctx, "password", map[string]string{"email": email, "password": password})
}

// SignUp creates the account and its profile row. When the project requires
// email confirmation no session is returned and the profile is created by
// the database trigger instead.
func (c *Client) SignUp(ctx context.Context, req models.RegisterRequest) (*Session, error) {
	if req.Email == "" {
		return nil, remote.NewError(remote.ErrValidation, "email is required")
	}
	body := map[string]any{
		"email":    req.Email,
		"password": req.Password,
		"data":     map[string]string{"username": req.Username},
	}

	var tr tokenResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/v1/signup", body: body, anon: true}, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, nil
	}

	sess, err := sessionFromToken(tr)
	if err != nil {
		return nil, remote.NewError(remote.ErrAuthRequired, "authentication required, please log in again")
	}
	c.Restore(sess)

	profile := remote.Row{"id": sess.UserID, "username": req.Username, "email": req.Email}
	if _, err := c.Insert(ctx, remote.Profiles, profile); err != nil && !errors.Is(err, remote.ErrAlreadyExists) {
		return sess, err
	}
	return sess, nil
}

// SignOut ends the session on the server and forgets it locally.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.Restore(nil)
	if c.Session() == nil {
		return nil
	}
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/v1/logout"}, nil)
	if err != nil && !errors.Is(err, remote.ErrAuthRequired) {
		return err
	}
	return nil
}
