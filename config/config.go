package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bizdesk/log"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const ConfigFileName = "config.toml"

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	return log.GetConfigDir()
}

// Config holds application configuration.
type Config struct {
	API APIConfig `mapstructure:"api"`
	Log LogConfig `mapstructure:"log"`
	UI  UIConfig  `mapstructure:"ui"`
}

// APIConfig says where the backend lives and how to authenticate.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Tenant  string        `mapstructure:"tenant"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig mirrors log.LogConfig.
type LogConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Dir      string `mapstructure:"dir"`
	MaxSize  int    `mapstructure:"max_size"`
	MaxFiles int    `mapstructure:"max_files"`
	MaxAge   int    `mapstructure:"max_age"`
	Compress bool   `mapstructure:"compress"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	StartResource  string        `mapstructure:"start_resource"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
}

// LogSettings converts the log section for log.Initialize.
func (c *Config) LogSettings() *log.LogConfig {
	return &log.LogConfig{
		LogsEnabled: c.Log.Enabled,
		LogsDir:     c.Log.Dir,
		LogMaxSize:  c.Log.MaxSize,
		LogMaxFiles: c.Log.MaxFiles,
		LogMaxAge:   c.Log.MaxAge,
		LogCompress: c.Log.Compress,
	}
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api.base_url %q must be an http or https URL", c.API.BaseURL)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.UI.SearchDebounce < 0 {
		return fmt.Errorf("ui.search_debounce must not be negative, got %s", c.UI.SearchDebounce)
	}
	return nil
}

// Loader reads configuration from a TOML file and BIZDESK_* environment
// variables, and can watch the file for edits.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. An empty path means ~/.bizdesk/config.toml.
func NewLoader(path string) *Loader {
	v := viper.New()

	v.SetDefault("api.base_url", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.tenant", "")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("log.enabled", true)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_files", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("ui.start_resource", "products")
	v.SetDefault("ui.search_debounce", "300ms")

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := GetConfigDir(); err == nil {
		v.SetConfigFile(filepath.Join(dir, ConfigFileName))
	}

	v.SetEnvPrefix("BIZDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load reads configuration from file and env. A missing file is not an
// error; defaults and env still apply.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", l.v.ConfigFileUsed(), err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ConfigFile returns the file the loader reads.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the re-read configuration every time the file
// is written. An invalid edit is reported through err and the previous
// configuration should be kept.
func (l *Loader) Watch(onChange func(cfg *Config, err error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		log.InfoLog.Printf("config file changed: %s", e.Name)
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

// Load is a shorthand for NewLoader(path).Load().
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}
