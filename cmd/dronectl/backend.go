package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Yuki-gilty/drone-manager/inventory"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/remote/api"
	"github.com/Yuki-gilty/drone-manager/remote/baas"
	"github.com/Yuki-gilty/drone-manager/remote/memory"
	"github.com/Yuki-gilty/drone-manager/views"
)

var errImportUnsupported = errors.New("import needs the api backend")

// account is the sign-in surface shared by the backends.
type account interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
	// WhoAmI returns the signed-in user's name, or an auth error.
	WhoAmI(ctx context.Context) (string, error)
	Import(ctx context.Context, snap models.Snapshot) (*models.ImportResult, error)
	// Saved is the session to persist, nil when signed out.
	Saved() *savedSession
}

type backend struct {
	store   *inventory.Store
	views   *views.Views
	account account
}

func newBackend(r remote.Remote, identity remote.Identity, acc account, logger *slog.Logger) *backend {
	store := inventory.New(r, identity, logger)
	return &backend{store: store, views: views.New(store), account: acc}
}

// openBackend connects to the configured backend and restores the saved
// session, if any.
func openBackend(cfg *Config, logger *slog.Logger) (*backend, error) {
	saved, err := loadSession(cfg.dir, cfg.Backend)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendBaaS:
		client := baas.NewClient(cfg.BaaS.URL, cfg.BaaS.AnonKey, baas.WithLogger(logger))
		if saved != nil && saved.BaaS != nil {
			client.Restore(saved.BaaS)
		}
		return newBackend(client, client, &baasAccount{client: client}, logger), nil
	default:
		client, err := api.NewClient(cfg.API.BaseURL, api.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if saved != nil && saved.Cookie != "" {
			client.SetSessionCookie(saved.Cookie)
		}
		return newBackend(client, client, &apiAccount{client: client}, logger), nil
	}
}

type apiAccount struct {
	client *api.Client
}

func (a *apiAccount) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	user, err := a.client.Register(ctx, req)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func (a *apiAccount) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.client.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func (a *apiAccount) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}

func (a *apiAccount) WhoAmI(ctx context.Context) (string, error) {
	user, err := a.client.Me(ctx)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func (a *apiAccount) Import(ctx context.Context, snap models.Snapshot) (*models.ImportResult, error) {
	return a.client.Import(ctx, snap)
}

func (a *apiAccount) Saved() *savedSession {
	cookie := a.client.SessionCookie()
	if cookie == "" {
		return nil
	}
	return &savedSession{Backend: BackendAPI, Cookie: cookie}
}

type baasAccount struct {
	client *baas.Client
}

func (a *baasAccount) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	sess, err := a.client.SignUp(ctx, req)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", remote.NewError(remote.ErrAuthRequired, "check your email to confirm the account, then log in")
	}
	return req.Username, nil
}

func (a *baasAccount) Login(ctx context.Context, username, password string) (string, error) {
	if _, err := a.client.SignIn(ctx, username, password); err != nil {
		return "", err
	}
	return username, nil
}

func (a *baasAccount) Logout(ctx context.Context) error {
	return a.client.SignOut(ctx)
}

func (a *baasAccount) WhoAmI(ctx context.Context) (string, error) {
	if _, ok := a.client.UserID(ctx); !ok {
		return "", remote.NewError(remote.ErrAuthRequired, "authentication required, please log in again")
	}
	return a.client.Session().Email, nil
}

func (a *baasAccount) Import(context.Context, models.Snapshot) (*models.ImportResult, error) {
	return nil, errImportUnsupported
}

func (a *baasAccount) Saved() *savedSession {
	sess := a.client.Session()
	if sess == nil {
		return nil
	}
	return &savedSession{Backend: BackendBaaS, BaaS: sess}
}

// demoAccount is always signed in as the demo user.
type demoAccount struct{}

const demoUser = "demo"

func (demoAccount) Register(context.Context, models.RegisterRequest) (string, error) {
	return demoUser, nil
}

func (demoAccount) Login(context.Context, string, string) (string, error) { return demoUser, nil }

func (demoAccount) Logout(context.Context) error { return nil }

func (demoAccount) WhoAmI(context.Context) (string, error) { return demoUser, nil }

func (demoAccount) Import(context.Context, models.Snapshot) (*models.ImportResult, error) {
	return nil, errImportUnsupported
}

func (demoAccount) Saved() *savedSession { return nil }

// openDemo returns a backend over an in-process store filled with sample data.
func openDemo(ctx context.Context, logger *slog.Logger) (*backend, error) {
	mem := memory.New()
	b := newBackend(mem, remote.StaticIdentity(demoUser), demoAccount{}, logger)
	if err := seedDemo(ctx, b.store); err != nil {
		return nil, err
	}
	return b, nil
}
