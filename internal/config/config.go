package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "agritech"

// Environment variables consulted when a key is absent from the file.
const (
	EnvWeatherKey = "AGRITECH_WEATHER_KEY"
	EnvPricesKey  = "AGRITECH_PRICES_KEY"
	EnvChatKey    = "AGRITECH_CHAT_KEY"
	EnvProxyURL   = "AGRITECH_PROXY_URL"
)

type WeatherConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key,omitempty"`
	DefaultLocation string `yaml:"default_location"`
}

type PricesConfig struct {
	BaseURL  string `yaml:"base_url"`
	Resource string `yaml:"resource"`
	APIKey   string `yaml:"api_key,omitempty"`
	Limit    int    `yaml:"limit"`
	// Refresh is how long the CLI trusts cached prices.
	Refresh string `yaml:"refresh"`
}

type ChatConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`
}

// ProxyConfig covers both sides: URL is where the TUI finds a proxy,
// Addr is where `serve` listens.
type ProxyConfig struct {
	URL       string `yaml:"url,omitempty"`
	Addr      string `yaml:"addr"`
	CacheTTL  string `yaml:"cache_ttl"`
	CacheSize int    `yaml:"cache_size"`
}

type Feed struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type Config struct {
	Timeout    string        `yaml:"timeout"`
	Weather    WeatherConfig `yaml:"weather"`
	Prices     PricesConfig  `yaml:"prices"`
	Chat       ChatConfig    `yaml:"chat"`
	Proxy      ProxyConfig   `yaml:"proxy"`
	Advisories []Feed        `yaml:"advisories"`
}

func (c *Config) WeatherKey() string { return orEnv(c.Weather.APIKey, EnvWeatherKey) }
func (c *Config) PricesKey() string  { return orEnv(c.Prices.APIKey, EnvPricesKey) }
func (c *Config) ChatKey() string    { return orEnv(c.Chat.APIKey, EnvChatKey) }
func (c *Config) ProxyURL() string   { return orEnv(c.Proxy.URL, EnvProxyURL) }

// Keyless reports whether the TUI should go through a proxy instead of
// calling sources with local keys.
func (c *Config) Keyless() bool {
	return c.ProxyURL() != ""
}

func orEnv(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}

func (c *Config) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

func (c *Config) PricesRefresh() time.Duration {
	return parseDuration(c.Prices.Refresh, time.Hour)
}

func (c *Config) ProxyCacheTTL() time.Duration {
	return parseDuration(c.Proxy.CacheTTL, 5*time.Minute)
}

// ProxyCacheSize returns the proxy LRU capacity, defaulting to 128.
func (c *Config) ProxyCacheSize() int {
	if c.Proxy.CacheSize <= 0 {
		return 128
	}
	return c.Proxy.CacheSize
}

// parseDuration accepts Go durations and "Nd" day counts.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Advisories {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, appName, appName+".db")
}

// LogPath is where the TUI writes its log, since it owns the terminal.
func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// LoadEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path, writing the embedded defaults there on
// first run. Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	defaults, _ := loadDefaults()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultFeeds(cfg, defaults)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeDefaultFeeds appends default feeds the user's file doesn't name.
func mergeDefaultFeeds(cfg, defaults *Config) {
	have := make(map[string]bool, len(cfg.Advisories))
	for _, f := range cfg.Advisories {
		have[f.Name] = true
	}
	for _, f := range defaults.Advisories {
		if !have[f.Name] {
			cfg.Advisories = append(cfg.Advisories, f)
		}
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o600)
}

func validate(cfg *Config) error {
	urls := []struct {
		name string
		raw  string
	}{
		{"weather.base_url", cfg.Weather.BaseURL},
		{"prices.base_url", cfg.Prices.BaseURL},
		{"chat.base_url", cfg.Chat.BaseURL},
		{"proxy.url", cfg.Proxy.URL},
	}
	for _, u := range urls {
		if err := checkURL(u.name, u.raw); err != nil {
			return err
		}
	}
	if cfg.Prices.Limit < 0 {
		return fmt.Errorf("prices.limit must be positive, got %d", cfg.Prices.Limit)
	}
	if cfg.Proxy.CacheSize < 0 {
		return fmt.Errorf("proxy.cache_size must be positive, got %d", cfg.Proxy.CacheSize)
	}
	for i, f := range cfg.Advisories {
		if f.Name == "" {
			return fmt.Errorf("advisory feed %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("advisory feed %q: url is required", f.Name)
		}
		if err := checkURL(fmt.Sprintf("advisory feed %q", f.Name), f.URL); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(name, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", name, u.Scheme)
	}
	return nil
}
