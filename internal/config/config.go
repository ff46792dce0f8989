package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"brainrot-feed/internal/feed"
	"brainrot-feed/internal/logging"
	"brainrot-feed/internal/version"
)

// ErrMissingToken is returned when a chat channel source has no credential.
var ErrMissingToken = errors.New("discord token not configured")

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Server    ServerConfig    `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Freshness FreshnessConfig `mapstructure:"freshness"`
	Feeds     []FeedConfig    `mapstructure:"feeds"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig covers the HTTP query endpoint.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig tunes outbound source polling.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// DiscordConfig holds the chat platform credential shared by chat channel sources.
type DiscordConfig struct {
	Token     string `mapstructure:"token"`
	UserAgent string `mapstructure:"user_agent"`
	Referer   string `mapstructure:"referer"`
}

// FreshnessConfig is the accepted record age range in seconds, inclusive.
type FreshnessConfig struct {
	MinAgeSeconds int64 `mapstructure:"min_age_seconds"`
	MaxAgeSeconds int64 `mapstructure:"max_age_seconds"`
}

// FeedConfig is one endpoint variant.
type FeedConfig struct {
	Name       string         `mapstructure:"name"`
	LocatorKey string         `mapstructure:"locator_key"`
	Sources    []SourceConfig `mapstructure:"sources"`
}

// SourceConfig describes one polled source.
type SourceConfig struct {
	Name      string    `mapstructure:"name"`
	URL       string    `mapstructure:"url"`
	Kind      feed.Kind `mapstructure:"kind"`
	Auth      string    `mapstructure:"auth"`
	Referer   string    `mapstructure:"referer"`
	UserAgent string    `mapstructure:"user_agent"`
}

// WatchConfig drives the watch command.
type WatchConfig struct {
	Feed        string        `mapstructure:"feed"`
	Interval    time.Duration `mapstructure:"interval"`
	MoreThan    string        `mapstructure:"morethan"`
	Whitelisted string        `mapstructure:"whitelisted"`
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BRAINROTFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("discord.token", "BRAINROTFEED_DISCORD_TOKEN", "DISCORD_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"

const channelURL = "https://discord.com/api/v9/channels/%s/messages?limit=1"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "brainrot-feed")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.request_timeout", "25s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("http.request_timeout", "10s")
	v.SetDefault("http.user_agent", version.UserAgent())
	v.SetDefault("http.max_body_bytes", int64(4<<20))

	v.SetDefault("discord.user_agent", browserUserAgent)
	v.SetDefault("discord.referer", "https://discord.com/channels/@me/1401775061706346536")

	v.SetDefault("freshness.min_age_seconds", feed.DefaultWindow.MinAge)
	v.SetDefault("freshness.max_age_seconds", feed.DefaultWindow.MaxAge)

	v.SetDefault("feeds", []map[string]any{
		{
			"name":        "10mplus",
			"locator_key": feed.LocatorJobID,
			"sources": []map[string]any{
				{"name": "10mplus", "kind": string(feed.KindChatChannel), "url": fmt.Sprintf(channelURL, "1401775181025775738")},
			},
		},
		{
			"name":        "1m10m",
			"locator_key": feed.LocatorJoinScript,
			"sources": []map[string]any{
				{"name": "1m10m-a", "kind": string(feed.KindChatChannel), "url": fmt.Sprintf(channelURL, "1401775061706346536")},
				{"name": "1m10m-b", "kind": string(feed.KindChatChannel), "url": fmt.Sprintf(channelURL, "1401775125765947442")},
			},
		},
	})

	v.SetDefault("watch.feed", "10mplus")
	v.SetDefault("watch.interval", "2s")

	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Freshness.MinAgeSeconds < 0 {
		return fmt.Errorf("freshness.min_age_seconds cannot be negative")
	}
	if c.Freshness.MaxAgeSeconds < c.Freshness.MinAgeSeconds {
		return fmt.Errorf("freshness.max_age_seconds must not be below min_age_seconds")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be greater than zero")
	}
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed must be configured")
	}

	seen := make(map[string]struct{}, len(c.Feeds))
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("feeds[%d].name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("feed %q configured twice", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.LocatorKey {
		case feed.LocatorJobID, feed.LocatorJoinScript:
		default:
			return fmt.Errorf("feed %q: locator_key must be %q or %q", f.Name, feed.LocatorJobID, feed.LocatorJoinScript)
		}
		if len(f.Sources) == 0 {
			return fmt.Errorf("feed %q has no sources", f.Name)
		}
		for j, s := range f.Sources {
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("feed %q: sources[%d].url is required", f.Name, j)
			}
			if _, err := feed.ParseKind(string(s.Kind)); err != nil {
				return fmt.Errorf("feed %q: sources[%d]: %w", f.Name, j, err)
			}
			if s.Kind == feed.KindChatChannel && s.Auth == "" && c.Discord.Token == "" {
				return ErrMissingToken
			}
		}
	}

	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// Window returns the configured freshness window.
func (c *Config) Window() feed.Window {
	return feed.Window{MinAge: c.Freshness.MinAgeSeconds, MaxAge: c.Freshness.MaxAgeSeconds}
}

// FeedSet resolves configured feeds into immutable descriptors keyed by name.
// Chat channel sources without their own credential inherit discord.token.
func (c *Config) FeedSet() map[string]feed.Feed {
	out := make(map[string]feed.Feed, len(c.Feeds))
	for _, fc := range c.Feeds {
		f := feed.Feed{Name: fc.Name, LocatorKey: fc.LocatorKey, Sources: make([]feed.Source, 0, len(fc.Sources))}
		for _, sc := range fc.Sources {
			src := feed.Source{
				Name:      sc.Name,
				URL:       sc.URL,
				Kind:      sc.Kind,
				Auth:      sc.Auth,
				Referer:   sc.Referer,
				UserAgent: sc.UserAgent,
			}
			if src.Kind == feed.KindChatChannel {
				if src.Auth == "" {
					src.Auth = c.Discord.Token
				}
				if src.Referer == "" {
					src.Referer = c.Discord.Referer
				}
				if src.UserAgent == "" {
					src.UserAgent = c.Discord.UserAgent
				}
			}
			f.Sources = append(f.Sources, src)
		}
		out[f.Name] = f
	}
	return out
}
