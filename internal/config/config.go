// Package config loads the ews-slink configuration from a file with environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/GeoNet/ews/internal/damage"
	"github.com/GeoNet/ews/internal/ews"
	"github.com/GeoNet/ews/internal/stream"
)

// EnvPrefix is prepended to environment overrides, e.g. EWS_SEEDLINK_SERVER.
const EnvPrefix = "EWS"

// Config is the complete application configuration.
type Config struct {
	SeedLink   SeedLinkConfig   `mapstructure:"seedlink"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Building   BuildingConfig   `mapstructure:"building"`
	Stream     StreamConfig     `mapstructure:"stream"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type SeedLinkConfig struct {
	Server    string        `mapstructure:"server"`
	Streams   string        `mapstructure:"streams"`
	Selectors string        `mapstructure:"selectors"`
	NetTo     time.Duration `mapstructure:"netto"`
	KeepAlive time.Duration `mapstructure:"keepalive"`
	Backfill  time.Duration `mapstructure:"backfill"`
}

type ProcessingConfig struct {
	SamplingRate   float64 `mapstructure:"sampling_rate"`
	STASeconds     float64 `mapstructure:"sta_seconds"`
	LTASeconds     float64 `mapstructure:"lta_seconds"`
	Threshold      float64 `mapstructure:"sta_lta_threshold"`
	HighPassCutoff float64 `mapstructure:"highpass_cutoff_hz"`
}

type BuildingConfig struct {
	Typology string `mapstructure:"typology"`
	Stories  int    `mapstructure:"stories"`
	Target   string `mapstructure:"target_damage_state"`
}

type StreamConfig struct {
	Gain  float64 `mapstructure:"gain"`
	Units string  `mapstructure:"units"`
}

type MonitorConfig struct {
	MaxChannels int `mapstructure:"max_channels"`
	AlertQueue  int `mapstructure:"alert_queue"`
}

type TelegramConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BotToken   string        `mapstructure:"bot_token"`
	ChatID     string        `mapstructure:"chat_id"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MetricsConfig struct {
	DataDogAPIKey string `mapstructure:"ddog_api_key"`
}

// Load reads the configuration file at path.  An empty path uses the defaults and the
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := ews.DefaultConfig()

	v.SetDefault("seedlink.server", "localhost:18000")
	v.SetDefault("seedlink.streams", "*_*")
	v.SetDefault("seedlink.selectors", "HN?")
	v.SetDefault("seedlink.netto", "60s")
	v.SetDefault("seedlink.keepalive", "1s")
	v.SetDefault("seedlink.backfill", "0s")

	v.SetDefault("processing.sampling_rate", d.SamplingRate)
	v.SetDefault("processing.sta_seconds", d.STASeconds)
	v.SetDefault("processing.lta_seconds", d.LTASeconds)
	v.SetDefault("processing.sta_lta_threshold", d.Threshold)
	v.SetDefault("processing.highpass_cutoff_hz", d.HighPassCutoff)

	v.SetDefault("building.typology", string(d.Typology))
	v.SetDefault("building.stories", d.Stories)
	v.SetDefault("building.target_damage_state", string(d.Target))

	v.SetDefault("stream.gain", 0.0)
	v.SetDefault("stream.units", string(stream.MS2))

	v.SetDefault("monitor.max_channels", 100)
	v.SetDefault("monitor.alert_queue", 100)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay", "1s")

	v.SetDefault("http.addr", ":8080")

	v.SetDefault("metrics.ddog_api_key", "")
}

// Validate checks the values that are not checked by the processing packages.
func (c *Config) Validate() error {
	if c.SeedLink.Server == "" {
		return fmt.Errorf("seedlink.server is required")
	}
	if c.SeedLink.NetTo < time.Second {
		return fmt.Errorf("seedlink.netto must be at least 1s")
	}
	if c.SeedLink.Backfill < 0 {
		return fmt.Errorf("seedlink.backfill must not be negative")
	}

	if c.Monitor.MaxChannels < 1 {
		return fmt.Errorf("monitor.max_channels must be at least 1")
	}
	if c.Monitor.AlertQueue < 1 {
		return fmt.Errorf("monitor.alert_queue must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if _, err := c.Conversion(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}

	if _, err := c.Channel(); err != nil {
		return err
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}

	return nil
}

// Channel returns the per channel processing parameters.
func (c *Config) Channel() (ews.Config, error) {
	typ, err := damage.ParseTypology(c.Building.Typology)
	if err != nil {
		return ews.Config{}, fmt.Errorf("building.typology: %w", err)
	}

	target, err := damage.ParseState(c.Building.Target)
	if err != nil {
		return ews.Config{}, fmt.Errorf("building.target_damage_state: %w", err)
	}

	p := ews.Config{
		SamplingRate:   c.Processing.SamplingRate,
		STASeconds:     c.Processing.STASeconds,
		LTASeconds:     c.Processing.LTASeconds,
		Threshold:      c.Processing.Threshold,
		HighPassCutoff: c.Processing.HighPassCutoff,
		Typology:       typ,
		Stories:        c.Building.Stories,
		Target:         target,
	}

	// a throw away machine validates the combination.
	if _, err := ews.New(p); err != nil {
		return ews.Config{}, err
	}

	return p, nil
}

// Conversion returns the raw value conversion.
func (c *Config) Conversion() (stream.Config, error) {
	u, err := stream.ParseUnits(c.Stream.Units)
	if err != nil {
		return stream.Config{}, err
	}

	s := stream.Config{Gain: c.Stream.Gain, Units: u}
	if err := s.Validate(); err != nil {
		return stream.Config{}, err
	}

	return s, nil
}
