package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "products", cfg.UI.StartResource)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.SearchDebounce)
	assert.True(t, cfg.Log.Enabled)
	assert.Equal(t, 10, cfg.LogSettings().LogMaxSize)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://erp.example.com/api"
tenant = "acme"
timeout = "5s"

[ui]
start_resource = "alerts"
search_debounce = "150ms"
`), 0644))
	t.Setenv("BIZDESK_API_TOKEN", "from-env")
	t.Setenv("BIZDESK_API_TENANT", "override")

	l := NewLoader(path)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "from-env", cfg.API.Token)
	assert.Equal(t, "override", cfg.API.Tenant, "env wins over the file")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "alerts", cfg.UI.StartResource)
	assert.Equal(t, 150*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Equal(t, path, l.ConfigFile())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"scheme", "[api]\nbase_url = \"ftp://example.com\"\n"},
		{"timeout", "[api]\ntimeout = \"0s\"\n"},
		{"debounce", "[ui]\nsearch_debounce = \"-1s\"\n"},
		{"syntax", "[api\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
