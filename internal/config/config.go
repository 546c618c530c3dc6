package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Kiosk      KioskConfig
	GPIO       GPIOConfig
	Fullscreen FullscreenConfig
	Navigation NavigationConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Control    ControlConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type KioskConfig struct {
	ID          string
	StartPage   string
	QuizPage    string
	GPIOEnabled bool
	// TestMode gates AutoSelectSet; outside test mode the set is always picked by the user.
	TestMode      bool
	AutoSelectSet int
}

type GPIOConfig struct {
	EventsPath     string
	ReconnectDelay time.Duration
}

type FullscreenConfig struct {
	ReentryDelay time.Duration
}

type NavigationConfig struct {
	PressDelay      time.Duration
	TransitionDelay time.Duration
}

type StorageConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ControlConfig configures the local HTTP control API; it is off by default.
type ControlConfig struct {
	Enabled    bool
	ListenAddr string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:5004")
	v.SetDefault("server.request_timeout", "5s")
	v.SetDefault("kiosk.id", "kiosk-01")
	v.SetDefault("kiosk.start_page", "/")
	v.SetDefault("kiosk.quiz_page", "/quiz")
	v.SetDefault("kiosk.gpio_enabled", false)
	v.SetDefault("kiosk.test_mode", false)
	v.SetDefault("kiosk.auto_select_set", 0)
	v.SetDefault("gpio.events_path", "/gpio-events")
	v.SetDefault("gpio.reconnect_delay", "5s")
	v.SetDefault("fullscreen.reentry_delay", "300ms")
	v.SetDefault("navigation.press_delay", "200ms")
	v.SetDefault("navigation.transition_delay", "100ms")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "kiosk_state.db")
	v.SetDefault("redis.db", 0)
	v.SetDefault("control.enabled", false)
	v.SetDefault("control.listen_addr", "127.0.0.1:8090")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml from the given directories (default "." and "./config"),
// then applies KIOSK_* environment overrides. A missing file is not an error.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("KIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Log the config file being used
	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Server: ServerConfig{
			BaseURL:        strings.TrimRight(v.GetString("server.base_url"), "/"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
		},
		Kiosk: KioskConfig{
			ID:            v.GetString("kiosk.id"),
			StartPage:     v.GetString("kiosk.start_page"),
			QuizPage:      v.GetString("kiosk.quiz_page"),
			GPIOEnabled:   v.GetBool("kiosk.gpio_enabled"),
			TestMode:      v.GetBool("kiosk.test_mode"),
			AutoSelectSet: v.GetInt("kiosk.auto_select_set"),
		},
		GPIO: GPIOConfig{
			EventsPath:     v.GetString("gpio.events_path"),
			ReconnectDelay: v.GetDuration("gpio.reconnect_delay"),
		},
		Fullscreen: FullscreenConfig{
			ReentryDelay: v.GetDuration("fullscreen.reentry_delay"),
		},
		Navigation: NavigationConfig{
			PressDelay:      v.GetDuration("navigation.press_delay"),
			TransitionDelay: v.GetDuration("navigation.transition_delay"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(v.GetString("storage.driver")),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Control: ControlConfig{
			Enabled:    v.GetBool("control.enabled"),
			ListenAddr: v.GetString("control.listen_addr"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values viper cannot check on its own
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	if c.Storage.Driver == "redis" && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required for the redis storage driver")
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("storage.postgres_dsn is required for the postgres storage driver")
	}
	if c.Control.Enabled && c.Control.ListenAddr == "" {
		return fmt.Errorf("control.listen_addr is required when the control API is enabled")
	}
	if c.Kiosk.AutoSelectSet < 0 {
		return fmt.Errorf("kiosk.auto_select_set must not be negative")
	}
	return nil
}

// AutoSelectSet returns the question set to pick automatically, or 0 when auto-select is off.
func (c *Config) AutoSelectSet() int {
	if !c.Kiosk.TestMode {
		return 0
	}
	return c.Kiosk.AutoSelectSet
}

// EventsURL is the absolute URL of the GPIO push-event stream
func (c *Config) EventsURL() string {
	return c.Server.BaseURL + c.GPIO.EventsPath
}
