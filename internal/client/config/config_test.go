package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"testbin"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()
	assert.Equal(t, "http://127.0.0.1:5001", c.ServerURL)
	assert.Equal(t, "chat-client.db", c.StateDB)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    *Config
		expectPanic bool
	}{
		{
			name:     "all flags",
			args:     []string{"-a", "http://chat:80", "-s", "/tmp/x.db", "-t", "3"},
			expected: &Config{ServerURL: "http://chat:80", StateDB: "/tmp/x.db", RequestTimeout: 3 * time.Second},
		},
		{
			name:     "unknown flags ignored",
			args:     []string{"-c", "cfg.json", "-a", "http://chat:80"},
			expected: &Config{ServerURL: "http://chat:80", StateDB: "chat-client.db", RequestTimeout: 10 * time.Second},
		},
		{name: "bad timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)
			cfg := &Config{}
			cfg.LoadDefaults()
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseJson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	b, _ := json.Marshal(map[string]any{"server_url": "http://remote:5001", "request_timeout": "2s"})
	require.NoError(t, os.WriteFile(path, b, 0o600))

	t.Run("overlays present fields", func(t *testing.T) {
		withArgs(t, "-config", path)
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)
		assert.Equal(t, "http://remote:5001", cfg.ServerURL)
		assert.Equal(t, "chat-client.db", cfg.StateDB)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("no file", func(t *testing.T) {
		withArgs(t)
		cfg := &Config{ServerURL: "keep"}
		parseJson(cfg)
		assert.Equal(t, "keep", cfg.ServerURL)
	})

	t.Run("invalid json panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0o600))
		withArgs(t, "-c", bad)
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestLoadConfig_FlagsBeatJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://json:1"}`), 0o600))

	withArgs(t, "-c", path, "-a", "http://flag:2")
	cfg := LoadConfig()
	assert.Equal(t, "http://flag:2", cfg.ServerURL)
}
