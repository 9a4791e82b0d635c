package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Draft.Seats)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godr4ft.toml")
	doc := `
[log]
level = "debug"

[database]
path = "/tmp/drafts.db"
busy_timeout = "250ms"

[draft]
seats = 6
cards_per_pack = 9

[export]
concurrency = 8
pages_per_second = 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/drafts.db", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.BusyTimeout())
	assert.True(t, cfg.Database.AutoMigrate, "unset keys keep their defaults")
	assert.Equal(t, 6, cfg.Draft.Seats)
	assert.Equal(t, 3, cfg.Draft.Packs)
	assert.Equal(t, 9, cfg.Draft.CardsPerPack)
	assert.Equal(t, 8, cfg.Export.Concurrency)
	assert.Equal(t, 2.5, cfg.Export.PagesPerSecond)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad toml":     "[draft\nseats = 2",
		"one seat":     "[draft]\nseats = 1",
		"bad timeout":  "[database]\nbusy_timeout = \"soon\"",
		"no workers":   "[export]\nconcurrency = 0",
		"port too big": "[server]\nport = 70000",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.toml")
	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Export.IncludeIncomplete = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GODR4FT_LOG_LEVEL", "error")
	t.Setenv("GODR4FT_DB_PATH", "/var/lib/godr4ft/drafts.db")
	t.Setenv("GODR4FT_PORT", "9300")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/var/lib/godr4ft/drafts.db", cfg.Database.Path)
	assert.Equal(t, 9300, cfg.Server.Port)

	t.Setenv("GODR4FT_PORT", "eighty")
	assert.Error(t, DefaultConfig().ApplyEnv())
}
