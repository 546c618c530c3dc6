package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5004", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "/quiz", cfg.Kiosk.QuizPage)
	assert.Equal(t, "/", cfg.Kiosk.StartPage)
	assert.Equal(t, 5*time.Second, cfg.GPIO.ReconnectDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Fullscreen.ReentryDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.Navigation.PressDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.Navigation.TransitionDelay)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:5004/gpio-events", cfg.EventsURL())
	assert.False(t, cfg.Control.Enabled)
	assert.Equal(t, "127.0.0.1:8090", cfg.Control.ListenAddr)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  base_url: http://kiosk.local:8080/
kiosk:
  id: lobby
  gpio_enabled: true
  test_mode: true
  auto_select_set: 2
storage:
  driver: redis
redis:
  address: localhost:6379
`)
	t.Setenv("KIOSK_GPIO_RECONNECT_DELAY", "1s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://kiosk.local:8080", cfg.Server.BaseURL)
	assert.Equal(t, "lobby", cfg.Kiosk.ID)
	assert.True(t, cfg.Kiosk.GPIOEnabled)
	assert.Equal(t, 2, cfg.AutoSelectSet())
	assert.Equal(t, time.Second, cfg.GPIO.ReconnectDelay)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestConfig_AutoSelectSetRequiresTestMode(t *testing.T) {
	cfg := &Config{Kiosk: KioskConfig{AutoSelectSet: 2}}
	assert.Equal(t, 0, cfg.AutoSelectSet())

	cfg.Kiosk.TestMode = true
	assert.Equal(t, 2, cfg.AutoSelectSet())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.Server.BaseURL = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "etcd" }, wantErr: true},
		{name: "redis without address", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: true},
		{name: "control without address", mutate: func(c *Config) { c.Control.Enabled = true }, wantErr: true},
		{name: "negative auto select", mutate: func(c *Config) { c.Kiosk.AutoSelectSet = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:  ServerConfig{BaseURL: "http://localhost:5004"},
				Storage: StorageConfig{Driver: "memory"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
