package baas

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anonKey = "anon-key"

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, anonKey, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ListBuildsQueryAndFlattensEmbeds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/drones", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "*,drone_types(name),parts(id)", q.Get("select"))
		assert.Equal(t, "eq.u1", q.Get("user_id"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, anonKey, r.Header.Get("apikey"))

		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "d1", "name": "Racer", "drone_types": map[string]any{"name": "5inch"}, "parts": []any{map[string]any{"id": "p1"}, map[string]any{"id": "p2"}}},
			{"id": "d2", "name": "Orphan", "drone_types": nil, "parts": []any{}},
		})
	})

	rows, err := c.List(context.Background(), remote.Query{
		Resource: remote.Drones,
		Filters:  []remote.Filter{remote.Eq("user_id", "u1")},
		OrderBy:  "created_at",
		Desc:     true,
		Embeds: []remote.Embed{
			{Resource: remote.DroneTypes, Column: "name", As: "type_name"},
			{Resource: remote.Parts, Column: "id", As: "part_ids", Many: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "5inch", rows[0]["type_name"])
	assert.Equal(t, []any{"p1", "p2"}, rows[0]["part_ids"])
	assert.NotContains(t, rows[0], "drone_types")
	assert.Nil(t, rows[1]["type_name"])
	assert.Equal(t, []any{}, rows[1]["part_ids"])
}

func TestClient_FilterEncoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		q := r.URL.Query()
		assert.Equal(t, `in.("p1","p2")`, q.Get("part_id"))
		assert.Equal(t, "is.null", q.Get("note"))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.DeleteWhere(context.Background(), remote.Repairs, remote.In("part_id", []string{"p1", "p2"}), remote.IsNull("note"))
	require.NoError(t, err)

	err = c.DeleteWhere(context.Background(), remote.Repairs)
	assert.True(t, errors.Is(err, remote.ErrValidation))
}

func TestClient_InsertIsOneBatch(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		var body []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		for i := range body {
			body[i]["id"] = "generated"
		}
		writeJSON(w, http.StatusCreated, body)
	})

	created, err := c.Insert(context.Background(), remote.Parts,
		remote.Row{"name": "Motor"}, remote.Row{"name": "Frame"}, remote.Row{"name": "Prop"})
	require.NoError(t, err)
	assert.Len(t, created, 3)
	assert.Equal(t, 1, requests)
}

func TestClient_GetJoinsEmbeds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "*,drone_types(name),parts(id)", q.Get("select"))
		assert.Equal(t, "eq.d1", q.Get("id"))
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "d1", "name": "Racer",
			"drone_types": map[string]any{"name": "5inch"},
			"parts":       []any{map[string]any{"id": "p1"}},
		})
	})

	row, err := c.Get(context.Background(), remote.Drones, "d1",
		remote.Embed{Resource: remote.DroneTypes, Column: "name", As: "type_name"},
		remote.Embed{Resource: remote.Parts, Column: "id", As: "part_ids", Many: true},
	)
	require.NoError(t, err)
	assert.Equal(t, "5inch", row["type_name"])
	assert.Equal(t, []any{"p1"}, row["part_ids"])
	assert.NotContains(t, row, "drone_types")

	// ids come from the client so a retried batch insert can be detected
	assert.False(t, c.Features().AssignsIDs)
}

func TestClient_GetAndDeleteNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
			writeJSON(w, http.StatusNotAcceptable, map[string]string{"code": "PGRST116", "message": "JSON object requested, multiple (or no) rows returned"})
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, []any{})
		}
	})
	ctx := context.Background()

	_, err := c.Get(ctx, remote.Drones, "missing")
	assert.True(t, errors.Is(err, remote.ErrNotFound))

	err = c.Delete(ctx, remote.Drones, "missing")
	assert.True(t, errors.Is(err, remote.ErrNotFound))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		status      int
		body        string
		wantKind    error
		wantMessage string
	}{
		{"unique violation", "POST", 409, `{"code":"23505","message":"duplicate key value violates unique constraint"}`, remote.ErrAlreadyExists, "this data already exists"},
		{"fk violation on delete", "DELETE", 409, `{"code":"23503","message":"update or delete on table"}`, remote.ErrReferenced, "referenced by other data, cannot delete"},
		{"fk violation on insert", "POST", 409, `{"code":"23503","message":"insert or update on table"}`, remote.ErrValidation, "referenced record does not exist"},
		{"rls denied", "POST", 403, `{"code":"42501","message":"new row violates row-level security policy"}`, remote.ErrAuthRequired, "authentication required, please log in again"},
		{"jwt expired", "GET", 401, `{"code":"PGRST301","message":"JWT expired"}`, remote.ErrAuthRequired, "authentication required, please log in again"},
		{"bad credentials", "POST", 400, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, remote.ErrAuthRequired, "invalid username or password"},
		{"bad credentials, error_code", "POST", 400, `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`, remote.ErrAuthRequired, "invalid username or password"},
		{"oauth error without known code", "POST", 401, `{"error":"unauthorized_client"}`, remote.ErrAuthRequired, "unauthorized_client"},
		{"unknown passes through", "GET", 500, `{"code":"XX000","message":"internal error: disk full"}`, remote.ErrServer, "internal error: disk full"},
		{"empty body", "GET", 503, ``, remote.ErrServer, "request failed (status 503)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.method, tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestClient_SignInResolvesUsername(t *testing.T) {
	token := signedToken(t, "user-123", time.Now().Add(time.Hour))
	var sawBearer string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/rpc/get_email_by_username":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pilot", body["p_username"])
			writeJSON(w, http.StatusOK, "pilot@example.com")
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pilot@example.com", body["email"])
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token":  token,
				"refresh_token": "refresh-1",
				"user":          map[string]string{"id": "user-123", "email": "pilot@example.com"},
			})
		case "/rest/v1/practice_days":
			sawBearer = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, []any{})
		}
	})
	ctx := context.Background()

	_, ok := c.UserID(ctx)
	assert.False(t, ok)

	sess, err := c.SignIn(ctx, "pilot", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-123", sess.UserID)
	assert.Equal(t, "refresh-1", sess.RefreshToken)

	id, ok := c.UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-123", id)

	_, err = c.List(ctx, remote.Query{Resource: remote.PracticeDays})
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, sawBearer)
}

func TestClient_SignInUnknownUsername(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, nil)
	})

	_, err := c.SignIn(context.Background(), "ghost", "password123")
	assert.True(t, errors.Is(err, remote.ErrAuthRequired))
	assert.Equal(t, "invalid username or password", err.Error())
}

func TestClient_ExpiredSessionRefreshes(t *testing.T) {
	fresh := signedToken(t, "user-123", time.Now().Add(time.Hour))
	refreshed := false

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		refreshed = true
		writeJSON(w, http.StatusOK, map[string]any{"access_token": fresh, "refresh_token": "refresh-2"})
	})
	c.Restore(&Session{
		AccessToken:  signedToken(t, "user-123", time.Now().Add(-time.Minute)),
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
		UserID:       "user-123",
	})

	id, ok := c.UserID(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "user-123", id)
	assert.True(t, refreshed)
	assert.Equal(t, "refresh-2", c.Session().RefreshToken)
}

func TestClient_SignUpCreatesProfile(t *testing.T) {
	token := signedToken(t, "user-9", time.Now().Add(time.Hour))
	var profile map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/signup":
			writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "refresh_token": "r"})
		case "/rest/v1/profiles":
			var rows []map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
			require.Len(t, rows, 1)
			profile = rows[0]
			writeJSON(w, http.StatusCreated, rows)
		}
	})

	sess, err := c.SignUp(context.Background(), models.RegisterRequest{Username: "pilot", Password: "password123", Email: "pilot@example.com"})
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "user-9", profile["id"])
	assert.Equal(t, "pilot", profile["username"])
}
