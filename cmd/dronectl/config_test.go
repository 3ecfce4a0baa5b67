package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Yuki-gilty/drone-manager/remote/baas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DRONECTL_BACKEND", "DRONECTL_API_URL", "SUPABASE_URL", "SUPABASE_ANON_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		want    func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "defaults without a file",
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendAPI, cfg.Backend)
				assert.Equal(t, defaultAPIURL, cfg.API.BaseURL)
			},
		},
		{
			name: "file",
			file: "backend: baas\nbaas:\n  url: https://x.supabase.co\n  anonKey: anon\nweekStart: monday\n",
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendBaaS, cfg.Backend)
				assert.Equal(t, "https://x.supabase.co", cfg.BaaS.URL)
				assert.Equal(t, "anon", cfg.BaaS.AnonKey)
				wd, err := cfg.weekday()
				require.NoError(t, err)
				assert.Equal(t, time.Monday, wd)
			},
		},
		{
			name: "env overrides file",
			file: "backend: api\napi:\n  baseURL: http://file\n",
			env: map[string]string{
				"DRONECTL_BACKEND":  "BaaS",
				"SUPABASE_URL":      "https://env.supabase.co",
				"SUPABASE_ANON_KEY": "key",
				"DRONECTL_API_URL":  "http://env",
			},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendBaaS, cfg.Backend)
				assert.Equal(t, "https://env.supabase.co", cfg.BaaS.URL)
				assert.Equal(t, "http://env", cfg.API.BaseURL)
			},
		},
		{
			name:    "baas without key",
			file:    "backend: baas\nbaas:\n  url: https://x.supabase.co\n",
			wantErr: "anonKey",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"DRONECTL_BACKEND": "ftp"},
			wantErr: "unknown backend",
		},
		{
			name:    "bad week start",
			file:    "weekStart: friday\n",
			wantErr: "weekStart",
		},
		{
			name:    "malformed yaml",
			file:    "backend: [",
			wantErr: "parse config.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := t.TempDir()
			if tt.file != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.file), 0o600))
			}

			cfg, err := loadConfig(dir)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestConfigDir_Override(t *testing.T) {
	t.Setenv("DRONECTL_CONFIG_DIR", "/tmp/dronectl-test")
	dir, err := configDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/dronectl-test", dir)
}

func TestSession_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	s, err := loadSession(dir, BackendAPI)
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, saveSession(dir, &savedSession{Backend: BackendAPI, Cookie: "abc"}))
	info, err := os.Stat(sessionPath(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, err = loadSession(dir, BackendAPI)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "abc", s.Cookie)

	// a session saved for another backend is ignored
	s, err = loadSession(dir, BackendBaaS)
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, saveSession(dir, &savedSession{Backend: BackendBaaS, BaaS: &baas.Session{AccessToken: "tok", UserID: "u1"}}))
	s, err = loadSession(dir, BackendBaaS)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u1", s.BaaS.UserID)

	require.NoError(t, saveSession(dir, nil))
	_, err = os.Stat(sessionPath(dir))
	assert.True(t, os.IsNotExist(err))
}
